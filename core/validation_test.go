package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateArticle(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name    string
		article *Article
		wantErr error
	}{
		{
			name:    "valid article",
			article: &Article{ID: "a1", Published: now, Annotations: []Annotation{{ID: "X1", Predicate: "about"}}},
		},
		{
			name:    "empty body is fine",
			article: &Article{ID: "a1", Published: now},
		},
		{
			name:    "nil article",
			article: nil,
			wantErr: ErrInvalidArticle,
		},
		{
			name:    "empty id",
			article: &Article{ID: "  ", Published: now},
			wantErr: ErrEmptyID,
		},
		{
			name:    "zero publish date",
			article: &Article{ID: "a1"},
			wantErr: ErrMissingPublishDate,
		},
		{
			name:    "annotation without id",
			article: &Article{ID: "a1", Published: now, Annotations: []Annotation{{Predicate: "about"}}},
			wantErr: ErrEmptyID,
		},
		{
			name:    "annotation without predicate",
			article: &Article{ID: "a1", Published: now, Annotations: []Annotation{{ID: "X1"}}},
			wantErr: ErrInvalidArticle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateArticle(tt.article)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrInvalidArticle)
		})
	}
}

func TestValidateWindow(t *testing.T) {
	assert.NoError(t, ValidateWindow(0, 0))
	assert.NoError(t, ValidateWindow(7, 2))
	assert.ErrorIs(t, ValidateWindow(-1, 0), ErrInvalidWindow)
	assert.ErrorIs(t, ValidateWindow(0, -3), ErrInvalidWindow)
	assert.NoError(t, ValidateWindow(MaxWindowDays, MaxWindowDays))
	assert.ErrorIs(t, ValidateWindow(200000, 0), ErrInvalidWindow)
	assert.ErrorIs(t, ValidateWindow(0, MaxWindowDays+1), ErrInvalidWindow)
}

func TestParseScoreThreshold(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "", want: 0.3},
		{in: "  ", want: 0.3},
		{in: "0.5", want: 0.5},
		{in: "0", want: 0},
		{in: "1.7", want: 1.7},
		{in: "abc", wantErr: true},
		{in: "-0.1", wantErr: true},
		{in: "NaN", wantErr: true},
		{in: "+Inf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseScoreThreshold(tt.in, 0.3)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidScoreThreshold)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
