package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseID(t *testing.T) {
	id, ok := ParseID("42")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "0", "-3", "abc", "1.5"} {
		_, ok := ParseID(bad)
		assert.False(t, ok, bad)
	}
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%ana%", ContainsPattern("ana"))
	assert.Equal(t, `%50\%\_off\\%`, ContainsPattern(`50%_off\`))
}

func TestJoinWithAnd(t *testing.T) {
	assert.Equal(t, "a = 1 AND b = 2", JoinWithAnd([]string{"a = 1", "b = 2"}))
	assert.Equal(t, "(x OR y)", "("+JoinWithOr([]string{"x", "y"})+")")
}
