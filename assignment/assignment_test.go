package assignment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeededRandIsDeterministic(t *testing.T) {
	startedAt := time.Unix(1700000000, 0)
	r1 := seededRand("game-1", startedAt)
	r2 := seededRand("game-1", startedAt)

	ids := []string{"a", "b", "c", "d"}
	cycle1 := circularCycle(ids, r1)
	cycle2 := circularCycle(ids, r2)
	assert.Equal(t, cycle1, cycle2)
}

func TestSeededRandDiffersByGameID(t *testing.T) {
	startedAt := time.Unix(1700000000, 0)
	r1 := seededRand("game-1", startedAt)
	r2 := seededRand("game-2", startedAt)

	ids := []string{"a", "b", "c", "d", "e", "f"}
	cycle1 := circularCycle(ids, r1)
	cycle2 := circularCycle(ids, r2)
	assert.NotEqual(t, cycle1, cycle2)
}

func TestCircularCycleIsPermutationOfInput(t *testing.T) {
	r := seededRand("g", time.Now())
	ids := []string{"p0", "p1", "p2", "p3", "p4"}
	cycle := circularCycle(ids, r)

	require.Len(t, cycle, len(ids))
	seen := map[string]bool{}
	for _, id := range cycle {
		seen[id] = true
	}
	for _, id := range ids {
		assert.True(t, seen[id])
	}
}

func TestRandomHamiltonianCycleVisitsEveryPlayerOnce(t *testing.T) {
	r := seededRand("g", time.Now())
	ids := []string{"p0", "p1", "p2", "p3"}
	cycle := randomHamiltonianCycle(ids, r)

	require.Len(t, cycle, len(ids))
	seen := map[string]int{}
	for _, id := range cycle {
		seen[id]++
	}
	for _, id := range ids {
		assert.Equal(t, 1, seen[id])
	}
}
