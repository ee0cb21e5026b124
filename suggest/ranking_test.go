package suggest

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRanking(t *testing.T) {
	tests := []struct {
		in      string
		want    Ranking
		wantErr bool
	}{
		{"", ByScore, false},
		{"score", ByScore, false},
		{" Date ", ByDate, false},
		{"TITLE", ByTitle, false},
		{"popularity", ByScore, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRanking(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownRanking)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRanking_String(t *testing.T) {
	assert.Equal(t, "score", ByScore.String())
	assert.Equal(t, "date", ByDate.String())
	assert.Equal(t, "title", ByTitle.String())
	assert.Equal(t, "Ranking(7)", Ranking(7).String())
}

func TestRanking_Compare(t *testing.T) {
	day := time.Date(2017, 12, 4, 0, 0, 0, 0, time.UTC)
	items := []Suggestion{
		{ID: "b", Title: "Beta", Score: 0.5, Published: day},
		{ID: "a", Title: "Alpha", Score: 0.5, Published: day},
		{ID: "c", Title: "Alpha", Score: 0.9, Published: day.Add(-time.Hour)},
		{ID: "d", Title: "Delta", Score: 0.1, Published: day.Add(time.Hour)},
	}

	ids := func(r Ranking) []string {
		sorted := slices.Clone(items)
		slices.SortStableFunc(sorted, r.Compare)
		out := make([]string, len(sorted))
		for i, s := range sorted {
			out[i] = s.ID
		}
		return out
	}

	assert.Equal(t, []string{"c", "a", "b", "d"}, ids(ByScore))
	assert.Equal(t, []string{"d", "a", "b", "c"}, ids(ByDate))
	assert.Equal(t, []string{"a", "c", "b", "d"}, ids(ByTitle))
	assert.Equal(t, ids(ByScore), ids(Ranking(99)), "unknown rankings fall back to score")
}
