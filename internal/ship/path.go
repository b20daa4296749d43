package ship

import (
	"math/rand/v2"
	"slices"

	"github.com/zyedidia/generic/mapset"
)

// Mistakes holds the odds of each kind of imperfect walk. At most one
// mistake is made per path.
type Mistakes struct {
	WrongTurn float64
	Detour    float64
	UTurn     float64
}

// ShortestPath returns the rooms from 'from' to 'to', both included, or nil
// if either room is unknown or 'to' cannot be reached.
func (m *Map) ShortestPath(from, to string) []string {
	if !m.Has(from) || !m.Has(to) {
		return nil
	}
	if from == to {
		return []string{from}
	}

	visited := mapset.New[string]()
	visited.Put(from)
	prev := make(map[string]string)
	queue := []string{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range sortedSet(m.rooms[cur].neighbors) {
			if visited.Has(next) {
				continue
			}
			visited.Put(next)
			prev[next] = cur
			if next == to {
				return unwind(prev, from, to)
			}
			queue = append(queue, next)
		}
	}
	return nil
}

func unwind(prev map[string]string, from, to string) []string {
	path := []string{to}
	for cur := to; cur != from; {
		cur = prev[cur]
		path = append(path, cur)
	}
	slices.Reverse(path)
	return path
}

// PathWithMistakes walks like a person who mostly knows the way: usually the
// shortest path, sometimes with a wrong turn and backtrack, a wandering
// detour of a few rooms, or a U-turn after the first step. Every consecutive
// pair in the result is connected on foot.
func (m *Map) PathWithMistakes(rng *rand.Rand, from, to string, odds Mistakes) []string {
	path := m.ShortestPath(from, to)
	if len(path) < 2 {
		return path
	}

	roll := rng.Float64()
	switch {
	case roll < odds.WrongTurn:
		return m.wrongTurn(rng, path)
	case roll < odds.WrongTurn+odds.Detour:
		return m.detour(rng, path)
	case roll < odds.WrongTurn+odds.Detour+odds.UTurn:
		return uTurn(path)
	}
	return path
}

func (m *Map) wrongTurn(rng *rand.Rand, path []string) []string {
	i := rng.IntN(len(path) - 1)
	var options []string
	for _, n := range m.Neighbors(path[i]) {
		if n == path[i+1] || (i > 0 && n == path[i-1]) {
			continue
		}
		options = append(options, n)
	}
	if len(options) == 0 {
		return path
	}
	wrong := options[rng.IntN(len(options))]
	out := slices.Clone(path[:i+1])
	out = append(out, wrong, path[i])
	return append(out, path[i+1:]...)
}

func (m *Map) detour(rng *rand.Rand, path []string) []string {
	to := path[len(path)-1]
	i := rng.IntN(len(path) - 1)
	out := slices.Clone(path[:i+1])
	cur := path[i]
	for range 2 + rng.IntN(2) {
		next := m.RandomNeighbor(rng, cur)
		if next == "" {
			break
		}
		out = append(out, next)
		cur = next
	}
	rest := m.ShortestPath(cur, to)
	if rest == nil {
		return path
	}
	return append(out, rest[1:]...)
}

func uTurn(path []string) []string {
	out := []string{path[0], path[1], path[0]}
	return append(out, path[1:]...)
}

// RandomNeighbor returns a random room adjacent to room, or "" if there is none
func (m *Map) RandomNeighbor(rng *rand.Rand, room string) string {
	neighbors := m.Neighbors(room)
	if len(neighbors) == 0 {
		return ""
	}
	return neighbors[rng.IntN(len(neighbors))]
}

// RandomRoom returns a random room that is not in exclude
func (m *Map) RandomRoom(rng *rand.Rand, exclude ...string) string {
	options := make([]string, 0, len(m.names))
	for _, name := range m.names {
		if !slices.Contains(exclude, name) {
			options = append(options, name)
		}
	}
	if len(options) == 0 {
		return ""
	}
	return options[rng.IntN(len(options))]
}

// Walk returns a random walk of up to hops steps starting after from
func (m *Map) Walk(rng *rand.Rand, from string, hops int) []string {
	var out []string
	cur := from
	for range hops {
		next := m.RandomNeighbor(rng, cur)
		if next == "" {
			break
		}
		out = append(out, next)
		cur = next
	}
	return out
}
