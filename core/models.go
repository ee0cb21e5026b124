package core

import (
	"encoding/hex"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// DigestOf returns a deterministic hex digest of the given parts using BLAKE2b.
// Parts are separated by a NUL byte so ("ab", "c") and ("a", "bc") differ.
func DigestOf(parts ...string) string {
	h, _ := blake2b.New(16, nil) // 16 bytes = 128 bits
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Annotation is one semantic tag attached to an article under a predicate.
type Annotation struct {
	ID        string
	Type      string
	Predicate string
	PrefLabel string
}

// Label returns the display form "type:prefLabel".
func (a Annotation) Label() string {
	return a.Type + ":" + a.PrefLabel
}

// Article is the full content of one published article.
type Article struct {
	ID          string
	Title       string
	Published   time.Time
	BodyXML     string
	Annotations []Annotation
}

// Summary returns the search-result view of the article.
func (a *Article) Summary() ArticleSummary {
	return ArticleSummary{ID: a.ID, Title: a.Title, Published: a.Published}
}

// ArticleSummary is what a search returns for each matching article.
type ArticleSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Published time.Time `json:"lastPublishDateTime"`

	// Excerpt is a passage of the body around a term match. Only term
	// searches fill it in.
	Excerpt string `json:"excerpt,omitempty"`
}

const day = 24 * time.Hour

// DateRange is a closed interval of publish dates.
type DateRange struct {
	Earliest time.Time `json:"earliest"`
	Latest   time.Time `json:"latest"`
}

// IsZero reports whether no date has been included yet.
func (r DateRange) IsZero() bool {
	return r.Earliest.IsZero() && r.Latest.IsZero()
}

// Include returns the smallest range covering r and t.
func (r DateRange) Include(t time.Time) DateRange {
	if t.IsZero() {
		return r
	}
	if r.IsZero() {
		return DateRange{Earliest: t, Latest: t}
	}
	if t.Before(r.Earliest) {
		r.Earliest = t
	}
	if t.After(r.Latest) {
		r.Latest = t
	}
	return r
}

// Expand widens the range by whole calendar days on either side.
func (r DateRange) Expand(daysBefore, daysAfter int) DateRange {
	return DateRange{
		Earliest: r.Earliest.AddDate(0, 0, -daysBefore),
		Latest:   r.Latest.AddDate(0, 0, daysAfter),
	}
}

// Contains reports whether t falls inside the range, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Earliest) && !t.After(r.Latest)
}

// Days returns the length of the range in fractional days.
func (r DateRange) Days() float64 {
	return float64(r.Latest.Sub(r.Earliest)) / float64(day)
}

// SearchQuery asks a content store for one page of articles carrying any of
// the given annotation ids and published inside the window.
//
// Term, when set, also requires the whole word to appear in the title, or in
// the title or body unless TitleOnly. A zero Window means any date.
type SearchQuery struct {
	AnnotationIDs []string
	Term          string
	TitleOnly     bool
	Window        DateRange
	Offset        int
	PageSize      int
}

// SearchPage is one page of search results.
// Total is the number of matches across all pages.
type SearchPage struct {
	Total int              `json:"indexCount"`
	Items []ArticleSummary `json:"results"`

	// Consumed is how many results of the underlying index this page covers,
	// including any the store could not decode and left out of Items.
	// Zero means len(Items).
	Consumed int `json:"-"`
}

// Advance returns how far the offset moves past this page.
func (p *SearchPage) Advance() int {
	if p.Consumed > 0 {
		return p.Consumed
	}
	return len(p.Items)
}
