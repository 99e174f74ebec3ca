package collector

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRingOverflow(t *testing.T) {
	r := NewRing(5)
	for i := 0; i < 8; i++ {
		r.Push(fmt.Sprintf("sample-%d", i))
	}

	assert.Equal(t, 5, r.Len())
	latest, ok := r.Latest()
	assert.True(t, ok)
	assert.Equal(t, "sample-7", latest)

	oldest, ok := r.At(0)
	assert.True(t, ok)
	assert.Equal(t, "sample-3", oldest)
}

func TestStoreFallsBackToCacheOnParseFailure(t *testing.T) {
	parseCalls := 0
	store := NewStore(10, func(sample string) (int, error) {
		parseCalls++
		if sample == "bad" {
			return 0, fmt.Errorf("unparseable")
		}
		return len(sample), nil
	})

	store.Push("good")
	v, ok := store.Latest()
	assert.True(t, ok)
	assert.Equal(t, 4, v)

	store.Push("bad")
	v, ok = store.Latest()
	assert.True(t, ok)
	assert.Equal(t, 4, v, "falls back to last good parse")
}

func TestStoreReportsNoDataWhenEmpty(t *testing.T) {
	store := NewStore[int](10, func(string) (int, error) { return 0, nil })
	_, ok := store.Latest()
	assert.False(t, ok)
}

func TestStoreClearDropsCache(t *testing.T) {
	store := NewStore(10, func(sample string) (int, error) { return len(sample), nil })
	store.Push("hello")
	_, ok := store.Latest()
	assert.True(t, ok)

	store.Clear()
	_, ok = store.Latest()
	assert.False(t, ok)
}
