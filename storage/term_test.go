package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/poiesic/kindred/core"
)

func TestTermMatcher(t *testing.T) {
	article := &core.Article{ID: "a", Title: "Brexit talks stall", Published: time.Now()}

	tests := []struct {
		name        string
		term        string
		titleOnly   bool
		text        string
		wantOK      bool
		wantExcerpt string
	}{
		{"blank term matches all", " ", false, "", true, ""},
		{"title only hit", "brexit", true, "nothing here", true, ""},
		{"title only miss", "deal", true, "a deal was done", false, ""},
		{"body hit", "deal", false, "a   deal\nwas done", true, "a deal was done"},
		{"whole words only", "talk", false, "talking points", false, ""},
		{"title fallback", "stall", false, "unrelated", true, "Brexit talks stall"},
		{"dots are literal", "a.b", false, "see axb here", false, ""},
		{"dotted term", "a.b", false, "see a.b here", true, "see a.b here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			excerpt, ok := NewTermMatcher(tt.term, tt.titleOnly).Match(article, tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantExcerpt, excerpt)
		})
	}
}

func TestExcerpt(t *testing.T) {
	words := strings.Repeat("alpha beta ", 30)
	text := words + "BREXIT" + " " + words
	start := strings.Index(text, "BREXIT")

	excerpt := Excerpt(text, []int{start, start + len("BREXIT")})
	assert.True(t, strings.HasPrefix(excerpt, "..."), excerpt)
	assert.True(t, strings.HasSuffix(excerpt, "..."), excerpt)
	assert.Contains(t, excerpt, "BREXIT")
	assert.Less(t, len(excerpt), len(text))
	for _, w := range strings.Fields(strings.Trim(excerpt, ".")) {
		assert.Contains(t, []string{"alpha", "beta", "BREXIT"}, w, "cuts fall on word boundaries")
	}

	short := "the Brexit vote"
	assert.Equal(t, short, Excerpt(short, []int{4, 10}))
}
