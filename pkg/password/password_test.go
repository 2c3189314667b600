package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countIn(s, set string) int {
	n := 0
	for _, r := range s {
		if strings.ContainsRune(set, r) {
			n++
		}
	}
	return n
}

func TestGenerate_Shape(t *testing.T) {
	for i := 0; i < 2000; i++ {
		p := Generate()

		require.GreaterOrEqual(t, len(p), MinLength, p)
		require.LessOrEqual(t, len(p), MaxLength, p)
		require.Equal(t, 1, countIn(p, Digits), p)
		require.Equal(t, 1, countIn(p, Symbols), p)
		require.Equal(t, len(p)-2, countIn(p, Letters), p)

		head, tail := p[:2], p[len(p)-2:]
		pairAtStart := countIn(head, Digits) == 1 && countIn(head, Symbols) == 1
		pairAtEnd := countIn(tail, Digits) == 1 && countIn(tail, Symbols) == 1
		require.True(t, pairAtStart || pairAtEnd, p)
	}
}

func TestGenerate_NoConfusables(t *testing.T) {
	for i := 0; i < 2000; i++ {
		p := Generate()
		assert.False(t, strings.ContainsAny(p, "lIO01o"), p)
	}
}

func TestGenerate_BothPlacements(t *testing.T) {
	var start, end bool
	for i := 0; i < 500 && !(start && end); i++ {
		p := Generate()
		if strings.ContainsAny(p[:1], Digits+Symbols) {
			start = true
		} else {
			end = true
		}
	}
	assert.True(t, start)
	assert.True(t, end)
}

func TestGenerate_AllLengths(t *testing.T) {
	seen := map[int]bool{}
	for i := 0; i < 1000 && len(seen) < 3; i++ {
		seen[len(Generate())] = true
	}
	assert.Equal(t, map[int]bool{8: true, 9: true, 10: true}, seen)
}
