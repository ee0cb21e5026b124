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


package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"

	"github.com/poiesic/kindred/core"
)

// maxAnnotations guards against corrupt length prefixes.
const maxAnnotations = 1 << 16

// MarshalArticle serializes an Article to bytes.
func MarshalArticle(article *core.Article) []byte {
	buf := make([]byte, articleSize(article))
	marshalArticle(article, buf)
	return buf
}

// UnmarshalArticle deserializes an Article from bytes.
func UnmarshalArticle(data []byte) (*core.Article, error) {
	article, _, err := unmarshalArticle(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return article, nil
}

// MarshalTime serializes a timestamp as varint nanoseconds since the epoch.
func MarshalTime(t time.Time) []byte {
	ns := t.UnixNano()
	buf := make([]byte, varint.Int64.Size(ns))
	varint.Int64.Marshal(ns, buf)
	return buf
}

// UnmarshalTime deserializes a timestamp written by MarshalTime. The result is in UTC.
func UnmarshalTime(data []byte) (time.Time, error) {
	ns, _, err := varint.Int64.Unmarshal(data)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return time.Unix(0, ns).UTC(), nil
}

func articleSize(a *core.Article) int {
	size := ord.String.Size(a.ID) +
		ord.String.Size(a.Title) +
		varint.Int64.Size(a.Published.UnixNano()) +
		ord.String.Size(a.BodyXML) +
		varint.Int.Size(len(a.Annotations))
	for _, ann := range a.Annotations {
		size += annotationSize(ann)
	}
	return size
}

func marshalArticle(a *core.Article, bs []byte) (n int) {
	n = ord.String.Marshal(a.ID, bs)
	n += ord.String.Marshal(a.Title, bs[n:])
	n += varint.Int64.Marshal(a.Published.UnixNano(), bs[n:])
	n += ord.String.Marshal(a.BodyXML, bs[n:])
	n += varint.Int.Marshal(len(a.Annotations), bs[n:])
	for _, ann := range a.Annotations {
		n += marshalAnnotation(ann, bs[n:])
	}
	return n
}

func unmarshalArticle(bs []byte) (a *core.Article, n int, err error) {
	a = &core.Article{}
	var n1 int

	if a.ID, n1, err = ord.String.Unmarshal(bs); err != nil {
		return nil, n, err
	}
	n += n1
	if a.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return nil, n, err
	}
	n += n1
	ns, n1, err := varint.Int64.Unmarshal(bs[n:])
	if err != nil {
		return nil, n, err
	}
	a.Published = time.Unix(0, ns).UTC()
	n += n1
	if a.BodyXML, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return nil, n, err
	}
	n += n1

	count, n1, err := varint.Int.Unmarshal(bs[n:])
	if err != nil {
		return nil, n, err
	}
	n += n1
	if count < 0 || count > maxAnnotations {
		return nil, n, ErrTruncatedData
	}
	if count > 0 {
		a.Annotations = make([]core.Annotation, count)
	}
	for i := range count {
		if a.Annotations[i], n1, err = unmarshalAnnotation(bs[n:]); err != nil {
			return nil, n, err
		}
		n += n1
	}
	return a, n, nil
}

func annotationSize(a core.Annotation) int {
	return ord.String.Size(a.ID) +
		ord.String.Size(a.Type) +
		ord.String.Size(a.Predicate) +
		ord.String.Size(a.PrefLabel)
}

func marshalAnnotation(a core.Annotation, bs []byte) (n int) {
	n = ord.String.Marshal(a.ID, bs)
	n += ord.String.Marshal(a.Type, bs[n:])
	n += ord.String.Marshal(a.Predicate, bs[n:])
	n += ord.String.Marshal(a.PrefLabel, bs[n:])
	return n
}

func unmarshalAnnotation(bs []byte) (a core.Annotation, n int, err error) {
	fields := []*string{&a.ID, &a.Type, &a.Predicate, &a.PrefLabel}
	for _, f := range fields {
		var n1 int
		if *f, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
			return core.Annotation{}, n, err
		}
		n += n1
	}
	return a, n, nil
}
