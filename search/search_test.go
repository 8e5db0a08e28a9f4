package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/e-XpertSolutions/go-secret/secret"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{a: "", b: "", want: 1},
		{a: "abc", b: "", want: 0},
		{a: "abc", b: "abc", want: 1},
		{a: "abcd", b: "bcde", want: 0.75},
		{a: "my key", b: "key1", want: 0.6},
		{a: "my key", b: "my reference", want: 8.0 / 18.0},
		{a: "my key", b: "My pin code", want: 6.0 / 17.0},
		{a: "my key", b: "example.com", want: 4.0 / 17.0},
		{a: "my key", b: "www.x.com", want: 2.0 / 15.0},
		{a: "xyz", b: "abc", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.InDelta(t, tt.want, Ratio(tt.a, tt.b), 1e-9)
		})
	}
}

func TestRatioJunkDoesNotSeed(t *testing.T) {
	// Punctuation alone never starts a match.
	assert.Equal(t, 0.0, Ratio("...", "a.b.c"))
	// But it extends a match seeded by word characters.
	assert.Equal(t, 1.0, Ratio("a.b", "a.b"))
}

func TestRatioNormalization(t *testing.T) {
	// Composed and decomposed forms of the same text.
	assert.Equal(t, 1.0, Ratio("caf\u00e9", "cafe\u0301"))
}

func TestRatioLongCandidate(t *testing.T) {
	// Exercise the popular rune heuristic on long candidates.
	long := make([]rune, 0, 300)
	for i := 0; i < 300; i++ {
		long = append(long, 'a')
	}
	assert.Equal(t, 0.0, Ratio("ab", string(long)))
	assert.InDelta(t, 2.0/201.0, Ratio("ab", string(long[:199])), 1e-9)
}

var records = []secret.Record{
	{Key: "key1", Value: "my value"},
	{Key: "www.webpage.com", Value: "my password"},
	{Key: "example.com", Value: "Super stored text \nitem ssis securely"},
	{Key: "my reference", Value: "Some secret note"},
	{Key: "My pin code", Value: "721959297823996703"},
	{Key: "Some list", Value: "- last stored item ...  securely entry"},
}

func TestFindKey(t *testing.T) {
	x := NewIndex(records)
	assert.Equal(t, []secret.Position{0, 3}, x.FindKey("my key", 2))
	assert.Equal(t, []secret.Position{0, 3, 4, 5, 2, 1}, x.FindKey("my key", 10))
}

func TestRankSmall(t *testing.T) {
	x := NewIndex([]secret.Record{
		{Key: "key1", Value: "a"},
		{Key: "www.x.com", Value: "b"},
		{Key: "my reference", Value: "c"},
	})
	assert.Equal(t, []secret.Position{0, 2}, x.Rank("my key", KeyField, 2))
}

func TestFindFullText(t *testing.T) {
	x := NewIndex([]secret.Record{
		{Key: "b", Value: "nothing"},
		{Key: "a", Value: "secret note"},
	})
	assert.Equal(t, []secret.Position{1}, x.FindFullText("secret", 1))
	assert.Equal(t, "a secret note", FullTextField(secret.Record{Key: "a", Value: "secret note"}))
}

func TestFindFullTextRecords(t *testing.T) {
	x := NewIndex(records)
	assert.Equal(t, []secret.Position{5, 2}, x.FindFullText("item securely", 2))
	assert.Equal(t, []secret.Position{0, 3}, x.FindFullText("my key", 2))
}

func TestRankStableTies(t *testing.T) {
	x := NewIndex([]secret.Record{
		{Key: "zzz"},
		{Key: "abc"},
		{Key: "zzz"},
		{Key: "abc"},
	})
	assert.Equal(t, []secret.Position{1, 3, 0, 2}, x.FindKey("abc", 10))
	assert.Equal(t, []secret.Position{1, 3, 0}, x.FindKey("abc", 3))
}

func TestRankLimits(t *testing.T) {
	x := NewIndex(records)
	assert.Empty(t, x.FindKey("my key", 0))
	assert.Empty(t, x.FindKey("my key", -1))
	assert.Empty(t, NewIndex(nil).FindKey("my key", 5))
	assert.Len(t, x.FindKey("anything", 100), len(records))
	assert.Equal(t, len(records), x.Len())
}
