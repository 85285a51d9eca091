package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labctl/labctl/internal/labapi"
)

func TestCache_ReadUnknownKeyIsEmpty(t *testing.T) {
	c := NewCache()
	entry := c.Read(labapi.FilterActive)
	assert.Equal(t, StateEmpty, entry.State)
	assert.Equal(t, labapi.FilterActive, entry.Key)
	assert.False(t, entry.Ready())
	assert.Empty(t, c.Keys())
}

func TestCache_BeginWriteAndClone(t *testing.T) {
	c := NewCache()
	gen := c.Begin(labapi.FilterAll)
	assert.Equal(t, StateLoading, c.Read(labapi.FilterAll).State)

	require.True(t, c.Write(labapi.FilterAll, []labapi.Lab{{ID: "a", Name: "Linux Basics"}}, nil, gen))
	entry := c.Read(labapi.FilterAll)
	require.Equal(t, StateFresh, entry.State)
	require.True(t, entry.Ready())
	assert.Equal(t, gen, entry.Generation)
	assert.False(t, entry.UpdatedAt.IsZero())

	// Returned entries are independent of the stored snapshot.
	entry.Labs[0].Name = "mutated"
	assert.Equal(t, "Linux Basics", c.Read(labapi.FilterAll).Labs[0].Name)
}

func TestCache_EmptyListIsFreshNotNil(t *testing.T) {
	c := NewCache()
	gen := c.Begin(labapi.FilterInactive)
	require.True(t, c.Write(labapi.FilterInactive, nil, nil, gen))
	entry := c.Read(labapi.FilterInactive)
	assert.Equal(t, StateFresh, entry.State)
	assert.NotNil(t, entry.Labs)
	assert.Empty(t, entry.Labs)
}

func TestCache_FailedWriteDropsData(t *testing.T) {
	c := NewCache()
	gen := c.Begin(labapi.FilterAll)
	require.True(t, c.Write(labapi.FilterAll, []labapi.Lab{{ID: "a"}}, nil, gen))

	gen = c.Begin(labapi.FilterAll)
	require.True(t, c.Write(labapi.FilterAll, nil, errBoom, gen))
	entry := c.Read(labapi.FilterAll)
	assert.Equal(t, StateFailed, entry.State)
	assert.ErrorIs(t, entry.Err, errBoom)
	assert.Nil(t, entry.Labs)
}

func TestCache_OlderGenerationIsDiscarded(t *testing.T) {
	c := NewCache()
	older := c.Begin(labapi.FilterAll)
	newer := c.Begin(labapi.FilterAll)

	require.True(t, c.Write(labapi.FilterAll, []labapi.Lab{{ID: "new"}}, nil, newer))
	assert.False(t, c.Write(labapi.FilterAll, []labapi.Lab{{ID: "old"}}, nil, older))

	entry := c.Read(labapi.FilterAll)
	assert.Equal(t, StateFresh, entry.State)
	assert.Equal(t, "new", entry.Labs[0].ID)
}

func TestCache_NewerReadInFlightKeepsLoading(t *testing.T) {
	c := NewCache()
	first := c.Begin(labapi.FilterAll)
	second := c.Begin(labapi.FilterAll)

	require.True(t, c.Write(labapi.FilterAll, []labapi.Lab{{ID: "first"}}, nil, first))
	assert.Equal(t, StateLoading, c.Read(labapi.FilterAll).State)

	require.True(t, c.Write(labapi.FilterAll, []labapi.Lab{{ID: "second"}}, nil, second))
	assert.Equal(t, StateFresh, c.Read(labapi.FilterAll).State)
}

func TestCache_InvalidateSupersedesInFlightRead(t *testing.T) {
	c := NewCache()
	gen := c.Begin(labapi.FilterAll)
	require.True(t, c.Write(labapi.FilterAll, []labapi.Lab{{ID: "a"}}, nil, gen))

	inflight := c.Begin(labapi.FilterAll)
	c.Invalidate()

	entry := c.Read(labapi.FilterAll)
	assert.True(t, entry.Stale)
	assert.Equal(t, StateFresh, entry.State, "invalidation reverts an orphaned loading state")
	assert.False(t, entry.Ready())

	assert.False(t, c.Write(labapi.FilterAll, []labapi.Lab{{ID: "stale"}}, nil, inflight))
	assert.Equal(t, "a", c.Read(labapi.FilterAll).Labs[0].ID)

	refetch := c.Begin(labapi.FilterAll)
	require.True(t, c.Write(labapi.FilterAll, []labapi.Lab{{ID: "b"}}, nil, refetch))
	entry = c.Read(labapi.FilterAll)
	assert.False(t, entry.Stale)
	assert.True(t, entry.Ready())
	assert.Equal(t, "b", entry.Labs[0].ID)
}

func TestCache_InvalidateSelectedKeys(t *testing.T) {
	c := NewCache()
	for _, key := range []labapi.FilterKey{labapi.FilterAll, labapi.FilterActive} {
		require.True(t, c.Write(key, nil, nil, c.Begin(key)))
	}
	floorBefore := c.Floor(labapi.FilterAll)

	c.Invalidate(labapi.FilterActive, labapi.FilterInactive)

	assert.True(t, c.Read(labapi.FilterActive).Stale)
	assert.False(t, c.Read(labapi.FilterAll).Stale)
	assert.Equal(t, floorBefore, c.Floor(labapi.FilterAll))
	assert.Equal(t, []labapi.FilterKey{labapi.FilterAll, labapi.FilterActive}, c.Keys())
}
