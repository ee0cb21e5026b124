package align

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSortBy(t *testing.T) {
	tests := []struct {
		in      string
		want    SortBy
		wantErr bool
	}{
		{"", ByPosition, false},
		{"position", ByPosition, false},
		{" Pre ", ByPre, false},
		{"POST", ByPost, false},
		{"length", ByPosition, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSortBy(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownSortBy)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSource(t *testing.T) {
	got, err := ParseSource("")
	require.NoError(t, err)
	assert.Equal(t, SourceAll, got)

	got, err = ParseSource(" Title")
	require.NoError(t, err)
	assert.Equal(t, SourceTitle, got)

	_, err = ParseSource("body")
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestSortBy_String(t *testing.T) {
	assert.Equal(t, "position", ByPosition.String())
	assert.Equal(t, "pre", ByPre.String())
	assert.Equal(t, "post", ByPost.String())
	assert.Equal(t, "SortBy(9)", SortBy(9).String())
	assert.Equal(t, "Source(3)", Source(3).String())
	assert.Equal(t, []string{"position", "pre", "post"}, SortNames())
	assert.Equal(t, []string{"all", "title"}, SourceNames())

	text, err := ByPre.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "pre", string(text))
}

func TestSortBy_Compare(t *testing.T) {
	lines := []Line{
		{ID: "a", Pre: "The ", Post: " deal"},
		{ID: "b", Pre: "After the ", Post: " vote"},
		{ID: "c", Pre: "", Post: " talks"},
		{ID: "d", Pre: "the ", Post: " agenda"},
		{ID: "e", Pre: "Hard ", Post: ""},
	}

	ids := func(s SortBy) []string {
		sorted := slices.Clone(lines)
		slices.SortStableFunc(sorted, s.Compare)
		out := make([]string, len(sorted))
		for i, l := range sorted {
			out[i] = l.ID
		}
		return out
	}

	// Longest lead-in first, then lead-in text, then shortest tail.
	assert.Equal(t, []string{"b", "e", "a", "d", "c"}, ids(ByPosition))
	// Words nearest the term decide, descending.
	assert.Equal(t, []string{"b", "a", "d", "e", "c"}, ids(ByPre))
	assert.Equal(t, []string{"b", "c", "a", "d", "e"}, ids(ByPost))
	assert.Equal(t, ids(ByPosition), ids(SortBy(42)))
}

func TestReversedWords(t *testing.T) {
	assert.Equal(t, " the after", reversedWords("After the "))
	assert.Equal(t, "", reversedWords(""))
}
