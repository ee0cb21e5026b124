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


package badger

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/poiesic/kindred/core"
)

const (
	articleRecordPrefix     = "artrec:"
	articleDatePrefix       = "artdate:"
	articleAnnotationPrefix = "artann:"
)

// makeArticleKey generates a key for an article by id.
// Format: prefix id
func makeArticleKey(id string) []byte {
	return []byte(articleRecordPrefix + id)
}

// makeArticleDateKey generates a composite key for the date index.
// Format: prefix timestamp id
func makeArticleDateKey(published time.Time, id string) []byte {
	buf := makePartialArticleDateKey(published)
	return append(buf, id...)
}

// makePartialArticleDateKey generates a partial key for date range scans.
// Format: prefix timestamp
func makePartialArticleDateKey(published time.Time) []byte {
	return appendTimestamp([]byte(articleDatePrefix), published)
}

// makeArticleAnnotationKey generates a composite key for the annotation index.
// Format: prefix annotationID NUL timestamp articleID
func makeArticleAnnotationKey(annotationID string, published time.Time, id string) []byte {
	buf := makePartialArticleAnnotationKey(annotationID, published)
	return append(buf, id...)
}

// makePartialArticleAnnotationKey generates a partial key for annotation scans
// bounded by publish time.
// Format: prefix annotationID NUL timestamp
func makePartialArticleAnnotationKey(annotationID string, published time.Time) []byte {
	buf := make([]byte, 0, len(articleAnnotationPrefix)+len(annotationID)+1+8)
	buf = append(buf, articleAnnotationPrefix...)
	buf = append(buf, annotationID...)
	buf = append(buf, 0)
	return appendTimestamp(buf, published)
}

// allTime spans every timestamp the indices can hold.
var allTime = core.DateRange{
	Earliest: time.UnixMicro(0).UTC(),
	Latest:   time.UnixMicro(math.MaxInt64).UTC(),
}

// appendTimestamp writes microseconds since the epoch in BigEndian order so
// lexicographic key order matches chronological order.
func appendTimestamp(buf []byte, t time.Time) []byte {
	return binary.BigEndian.AppendUint64(buf, uint64(t.UnixMicro()))
}
