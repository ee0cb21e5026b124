package badger

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAnnotationKeysOrderByTime(t *testing.T) {
	t1 := time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Microsecond)

	k1 := makeArticleAnnotationKey("X1", t1, "zzz")
	k2 := makeArticleAnnotationKey("X1", t2, "aaa")
	assert.Negative(t, bytes.Compare(k1, k2))

	partial := makePartialArticleAnnotationKey("X1", t1)
	assert.True(t, bytes.HasPrefix(k1, partial))
	assert.False(t, bytes.HasPrefix(makeArticleAnnotationKey("X10", t1, "zzz"), makePartialArticleAnnotationKey("X1", t1)))
}

func TestDateKeysOrderByTime(t *testing.T) {
	t1 := time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Negative(t, bytes.Compare(makeArticleDateKey(t1, "b"), makeArticleDateKey(t1.Add(time.Second), "a")))
	assert.Equal(t, []byte("artrec:a1"), makeArticleKey("a1"))
}
