// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/poiesic/kindred/core"
)

const contentPath = "/enrichedcontent/"

type annotationPayload struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Predicate string `json:"predicate"`
	PrefLabel string `json:"prefLabel"`
}

type articlePayload struct {
	Title         string              `json:"title"`
	PublishedDate string              `json:"publishedDate"`
	BodyXML       string              `json:"bodyXML"`
	Annotations   []annotationPayload `json:"annotations"`
}

// GetArticle fetches the enriched content of one article.
func (c *Client) GetArticle(ctx context.Context, id string) (*core.Article, error) {
	if id == "" {
		return nil, core.ErrEmptyID
	}
	if a, ok := c.articles.Read(id); ok {
		return a, nil
	}

	data, err := c.fetch(ctx, "GET", "enrichedcontent", c.endpoint(c.cfg.ContentHost, contentPath+url.PathEscape(id), nil), nil)
	if err != nil {
		return nil, fmt.Errorf("fetching article %s: %w", id, err)
	}

	article, err := decodeArticle(id, data)
	if err != nil {
		return nil, err
	}
	c.articles.Write(id, article)
	return article, nil
}

func decodeArticle(id string, data []byte) (*core.Article, error) {
	var payload articlePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, &DecodeError{Endpoint: "enrichedcontent", Query: id, Raw: string(data), Err: err}
	}

	published, err := time.Parse(time.RFC3339, payload.PublishedDate)
	if err != nil {
		return nil, &DecodeError{Endpoint: "enrichedcontent", Query: id, Raw: string(data), Err: err}
	}

	article := &core.Article{
		ID:        id,
		Title:     payload.Title,
		Published: published.UTC(),
		BodyXML:   payload.BodyXML,
	}
	for _, a := range payload.Annotations {
		article.Annotations = append(article.Annotations, core.Annotation{
			ID:        a.ID,
			Type:      a.Type,
			Predicate: a.Predicate,
			PrefLabel: a.PrefLabel,
		})
	}
	return article, nil
}
