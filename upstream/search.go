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
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/kindred/core"
	"github.com/poiesic/kindred/storage"
)

const searchPath = "/content/search/v1"

// searchTimeLayout is RFC 3339 in UTC without fractional seconds, which the
// search API requires in date constraints.
const searchTimeLayout = "2006-01-02T15:04:05Z"

// entityConstraint matches ontology:value constraints such as peopleId:abc,
// and not field constraints such as lastPublishDateTime:>x.
var entityConstraint = regexp.MustCompile(`^([a-z]+(?:Id)?):(.+)$`)

type searchRequest struct {
	QueryString   string        `json:"queryString"`
	QueryContext  queryContext  `json:"queryContext"`
	ResultContext resultContext `json:"resultContext"`
}

type queryContext struct {
	Curations []string `json:"curations"`
}

type resultContext struct {
	MaxResults string   `json:"maxResults"`
	Offset     string   `json:"offset"`
	Aspects    []string `json:"aspects"`
	SortOrder  string   `json:"sortOrder"`
	SortField  string   `json:"sortField"`
	Facets     facets   `json:"facets"`
}

type facets struct {
	Names       []string `json:"names"`
	MaxElements int      `json:"maxElements"`
}

type searchResponse struct {
	Results []struct {
		IndexCount int `json:"indexCount"`
		Results    []struct {
			ID    string `json:"id"`
			Title struct {
				Title string `json:"title"`
			} `json:"title"`
			Lifecycle struct {
				LastPublishDateTime string `json:"lastPublishDateTime"`
			} `json:"lifecycle"`
			Summary struct {
				Excerpt string `json:"excerpt"`
			} `json:"summary"`
		} `json:"results"`
	} `json:"results"`
}

// Search runs one page of an annotation or term search. query.AnnotationIDs
// must be legacy ids as returned by TranslateToLegacyIDs.
func (c *Client) Search(ctx context.Context, query core.SearchQuery) (*core.SearchPage, error) {
	if len(query.AnnotationIDs) == 0 && strings.TrimSpace(query.Term) == "" {
		return nil, fmt.Errorf("%w: %w", storage.ErrInvalidQuery, ErrNoAnnotations)
	}
	if query.PageSize < 1 {
		query.PageSize = storage.DefaultPageSize
	}

	req := buildSearchRequest(query)
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	key := core.DigestOf(string(body))
	if page, ok := c.searches.Read(key); ok {
		return page, nil
	}

	data, err := c.fetch(ctx, "POST", "search", c.endpoint(c.cfg.SearchHost, searchPath, nil), body)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", req.QueryString, err)
	}

	page, err := c.decodeSearch(req.QueryString, data)
	if err != nil {
		return nil, err
	}
	c.searches.Write(key, page)
	return page, nil
}

func (c *Client) decodeSearch(queryString string, data []byte) (*core.SearchPage, error) {
	var resp searchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &DecodeError{Endpoint: "search", Query: queryString, Raw: string(data), Err: err}
	}

	page := &core.SearchPage{}
	if len(resp.Results) == 0 {
		return page, nil
	}
	page.Total = resp.Results[0].IndexCount
	page.Consumed = len(resp.Results[0].Results)
	for _, r := range resp.Results[0].Results {
		published, err := time.Parse(time.RFC3339, r.Lifecycle.LastPublishDateTime)
		if err != nil {
			c.logger.Debug("skipping search result with bad date", "id", r.ID, "err", err)
			continue
		}
		page.Items = append(page.Items, core.ArticleSummary{
			ID:        r.ID,
			Title:     r.Title.Title,
			Published: published.UTC(),
			Excerpt:   r.Summary.Excerpt,
		})
	}
	return page, nil
}

func buildSearchRequest(query core.SearchQuery) searchRequest {
	var constraints []string
	if term := strings.TrimSpace(strings.ReplaceAll(query.Term, `"`, "")); term != "" {
		if query.TitleOnly {
			constraints = append(constraints, "title:"+term)
		} else {
			constraints = append(constraints, `"`+term+`"`)
		}
	}
	if len(query.AnnotationIDs) > 0 {
		constraints = append(constraints, oredTerm(query.AnnotationIDs))
	}
	if !query.Window.IsZero() {
		constraints = append(constraints,
			"lastPublishDateTime:>"+query.Window.Earliest.UTC().Format(searchTimeLayout),
			"lastPublishDateTime:<"+query.Window.Latest.UTC().Format(searchTimeLayout),
		)
	}
	for i, constraint := range constraints {
		constraints[i] = quoteEntity(constraint)
	}

	aspects := []string{"title", "lifecycle"}
	if query.Term != "" {
		aspects = append(aspects, "summary")
	}

	return searchRequest{
		QueryString:  strings.Join(constraints, " and "),
		QueryContext: queryContext{Curations: []string{"ARTICLES"}},
		ResultContext: resultContext{
			MaxResults: strconv.Itoa(query.PageSize),
			Offset:     strconv.Itoa(query.Offset),
			Aspects:    aspects,
			SortOrder:  "DESC",
			SortField:  "lastPublishDateTime",
			Facets:     facets{Names: []string{}, MaxElements: -1},
		},
	}
}

// oredTerm combines legacy ids into one constraint: a single id as is,
// several as (ont:"a" OR ont:"b").
func oredTerm(ids []string) string {
	if len(ids) == 1 {
		return ids[0]
	}
	quoted := make([]string, len(ids))
	for i, id := range ids {
		ontology, value, _ := strings.Cut(id, ":")
		quoted[i] = ontology + `:"` + value + `"`
	}
	return "(" + strings.Join(quoted, " OR ") + ")"
}

// quoteEntity quotes the value of an ontology:value constraint.
func quoteEntity(constraint string) string {
	m := entityConstraint.FindStringSubmatch(constraint)
	if m == nil {
		return constraint
	}
	return m[1] + `:"` + m[2] + `"`
}
