package catalog

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronzipp/crewmate/internal/ship"
)

func TestArchetypesPointAtRealRooms(t *testing.T) {
	t.Parallel()
	m := ship.NewSkeld()

	all := All()
	require.Len(t, all, 26)
	keys := map[string]bool{}
	for _, a := range all {
		assert.False(t, keys[a.Key], "duplicate key %s", a.Key)
		keys[a.Key] = true
		require.NotEmpty(t, a.Locations, a.Key)
		for _, room := range a.Locations {
			assert.True(t, m.Has(room), "%s is assigned to unknown room %s", a.Key, room)
		}
	}
}

func TestAllReturnsCopies(t *testing.T) {
	t.Parallel()
	all := All()
	all[0].Locations[0] = "Bridge"

	a, ok := Lookup(all[0].Key)
	require.True(t, ok)
	assert.NotEqual(t, "Bridge", a.Locations[0])

	_, ok = Lookup("nope")
	assert.False(t, ok)
}

func TestGenerate(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewPCG(7, 7))

	for range 50 {
		n := DefaultCount(rng)
		assert.GreaterOrEqual(t, n, MinTasks)
		assert.LessOrEqual(t, n, MaxTasks)

		tasks := Generate(rng, n)
		require.Len(t, tasks, n)
		for _, task := range tasks {
			a, ok := Lookup(task.Key)
			require.True(t, ok)
			assert.True(t, slices.Contains(a.Locations, task.Location))
			assert.Equal(t, a.Name, task.Name)
			assert.False(t, task.Completed)
		}
	}

	assert.Empty(t, Generate(rng, 0))
	assert.Empty(t, Generate(rng, -3))
}
