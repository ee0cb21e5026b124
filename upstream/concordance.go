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
	"strings"
)

const (
	concordancePath = "/concordances"

	// tmeAuthority identifies concordance entries carrying TME ids.
	tmeAuthority = "http://api.ft.com/system/FT-TME"
)

// tmeOntologies maps the trailing segment of a TME id to its search ontology.
var tmeOntologies = map[string]string{
	"UE4=":         "peopleId",
	"T04=":         "organisationsId",
	"R0w=":         "regionsId",
	"U2VjdGlvbnM=": "sectionsId",
	"VG9waWNz":     "topicsId",
}

type concordanceResponse struct {
	Concordances []struct {
		Identifier struct {
			Authority       string `json:"authority"`
			IdentifierValue string `json:"identifierValue"`
		} `json:"identifier"`
	} `json:"concordances"`
}

// TranslateToLegacyIDs looks up the TME ids concorded with annotationID and
// returns those with a known ontology as ontology:tmeId search ids.
func (c *Client) TranslateToLegacyIDs(ctx context.Context, annotationID string) ([]string, error) {
	if annotationID == "" {
		return nil, nil
	}
	if ids, ok := c.translations.Read(annotationID); ok {
		return ids, nil
	}

	query := url.Values{"conceptId": {annotationID}}
	data, err := c.fetch(ctx, "GET", "concordances", c.endpoint(c.cfg.ConcordanceHost, concordancePath, query), nil)
	if err != nil {
		return nil, fmt.Errorf("translating %s: %w", annotationID, err)
	}

	var resp concordanceResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &DecodeError{Endpoint: "concordances", Query: annotationID, Raw: string(data), Err: err}
	}

	ids := []string{}
	for _, conc := range resp.Concordances {
		if conc.Identifier.Authority != tmeAuthority || conc.Identifier.IdentifierValue == "" {
			continue
		}
		if legacy := LegacyID(conc.Identifier.IdentifierValue); legacy != "" {
			ids = append(ids, legacy)
		}
	}

	c.translations.Write(annotationID, ids)
	return ids, nil
}

// LegacyID converts a TME id to ontology:tmeId, or "" when the id's trailing
// segment names no known ontology.
func LegacyID(tmeID string) string {
	i := strings.LastIndex(tmeID, "-")
	if i < 0 || i == len(tmeID)-1 {
		return ""
	}
	ontology, ok := tmeOntologies[tmeID[i+1:]]
	if !ok {
		return ""
	}
	return ontology + ":" + tmeID
}
