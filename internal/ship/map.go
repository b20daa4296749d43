package ship

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/zyedidia/generic/mapset"
)

// RoomSpec describes one room of a layout
type RoomSpec struct {
	Name      string
	Neighbors []string
	HasTasks  bool
	CanVent   bool
}

// Room is the immutable part of a room
type Room struct {
	Name      string
	HasTasks  bool
	CanVent   bool
	neighbors mapset.Set[string]
	vents     mapset.Set[string]
}

// RoomInfo is a read-only view of a room including its current bodies
type RoomInfo struct {
	Name      string   `json:"name"`
	HasTasks  bool     `json:"has_tasks"`
	CanVent   bool     `json:"can_vent"`
	Neighbors []string `json:"neighbors"`
	Vents     []string `json:"vents"`
	Bodies    []string `json:"bodies"`
}

// Map is a graph of rooms with two independent adjacency relations:
// walking and venting. The structure never changes after New; only the
// bodies lying in rooms do.
type Map struct {
	layout string
	rooms  map[string]*Room
	names  []string
	lower  map[string]string

	mu     sync.RWMutex
	bodies map[string][]string
}

// New builds a map from a room layout and a vent table. Edges are
// symmetrised: a connection listed by either room exists both ways.
// Vent edges touching a room that cannot vent are dropped.
func New(layout string, specs []RoomSpec, vents map[string][]string) *Map {
	m := &Map{
		layout: layout,
		rooms:  make(map[string]*Room, len(specs)),
		lower:  make(map[string]string, len(specs)),
		bodies: make(map[string][]string),
	}
	for _, spec := range specs {
		m.rooms[spec.Name] = &Room{
			Name:      spec.Name,
			HasTasks:  spec.HasTasks,
			CanVent:   spec.CanVent,
			neighbors: mapset.New[string](),
			vents:     mapset.New[string](),
		}
		m.names = append(m.names, spec.Name)
		m.lower[strings.ToLower(spec.Name)] = spec.Name
	}
	slices.Sort(m.names)

	for _, spec := range specs {
		for _, n := range spec.Neighbors {
			other, ok := m.rooms[n]
			if !ok || n == spec.Name {
				continue
			}
			m.rooms[spec.Name].neighbors.Put(n)
			other.neighbors.Put(spec.Name)
		}
	}
	for from, tos := range vents {
		src, ok := m.rooms[from]
		if !ok || !src.CanVent {
			continue
		}
		for _, to := range tos {
			dst, ok := m.rooms[to]
			if !ok || !dst.CanVent || to == from {
				continue
			}
			src.vents.Put(to)
			dst.vents.Put(from)
		}
	}
	return m
}

// Layout returns the name of the layout the map was built from
func (m *Map) Layout() string {
	return m.layout
}

// Rooms returns every room name in sorted order
func (m *Map) Rooms() []string {
	return slices.Clone(m.names)
}

// Has reports whether a room exists
func (m *Map) Has(room string) bool {
	_, ok := m.rooms[room]
	return ok
}

// Resolve maps user input to a room name, ignoring case and surrounding space
func (m *Map) Resolve(input string) (string, bool) {
	name, ok := m.lower[strings.ToLower(strings.TrimSpace(input))]
	return name, ok
}

// Room returns the immutable room record, or nil
func (m *Map) Room(name string) *Room {
	return m.rooms[name]
}

// Neighbors returns the rooms reachable on foot from room, sorted
func (m *Map) Neighbors(room string) []string {
	r, ok := m.rooms[room]
	if !ok {
		return nil
	}
	return sortedSet(r.neighbors)
}

// VentNeighbors returns the rooms reachable through vents from room, sorted
func (m *Map) VentNeighbors(room string) []string {
	r, ok := m.rooms[room]
	if !ok {
		return nil
	}
	return sortedSet(r.vents)
}

// Connected reports whether b can be reached from a in one step on foot
func (m *Map) Connected(a, b string) bool {
	r, ok := m.rooms[a]
	return ok && r.neighbors.Has(b)
}

// VentConnected reports whether b can be reached from a in one vent hop
func (m *Map) VentConnected(a, b string) bool {
	r, ok := m.rooms[a]
	return ok && r.vents.Has(b)
}

// Info returns a snapshot of a room
func (m *Map) Info(room string) (RoomInfo, bool) {
	r, ok := m.rooms[room]
	if !ok {
		return RoomInfo{}, false
	}
	return RoomInfo{
		Name:      r.Name,
		HasTasks:  r.HasTasks,
		CanVent:   r.CanVent,
		Neighbors: sortedSet(r.neighbors),
		Vents:     sortedSet(r.vents),
		Bodies:    m.Bodies(room),
	}, true
}

// AddBody leaves a body in a room. Names may repeat.
func (m *Map) AddBody(room, name string) bool {
	if !m.Has(room) {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bodies[room] = append(m.bodies[room], name)
	return true
}

// RemoveBody removes the first body with name and reports whether one was there
func (m *Map) RemoveBody(room, name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.Index(m.bodies[room], name)
	if i < 0 {
		return false
	}
	m.bodies[room] = slices.Delete(m.bodies[room], i, i+1)
	if len(m.bodies[room]) == 0 {
		delete(m.bodies, room)
	}
	return true
}

// ClearBodies removes every body from a room and returns them
func (m *Map) ClearBodies(room string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := m.bodies[room]
	delete(m.bodies, room)
	return removed
}

// ClearAllBodies empties every room
func (m *Map) ClearAllBodies() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.bodies)
}

// Bodies returns the bodies in a room in the order they were left
func (m *Map) Bodies(room string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.bodies[room])
}

// AllBodies returns a copy of the bodies of every non-empty room
func (m *Map) AllBodies() map[string][]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string][]string, len(m.bodies))
	for room, names := range m.bodies {
		out[room] = slices.Clone(names)
	}
	return out
}

// Clone returns a map sharing the immutable graph with its own body lists
func (m *Map) Clone() *Map {
	c := &Map{
		layout: m.layout,
		rooms:  m.rooms,
		names:  m.names,
		lower:  m.lower,
		bodies: m.AllBodies(),
	}
	return c
}

type mapJSON struct {
	Layout string              `json:"layout"`
	Bodies map[string][]string `json:"bodies"`
}

// MarshalJSON encodes the layout name and the bodies per room
func (m *Map) MarshalJSON() ([]byte, error) {
	return json.Marshal(mapJSON{Layout: m.layout, Bodies: m.AllBodies()})
}

// UnmarshalJSON rebuilds the named layout and restores its bodies
func (m *Map) UnmarshalJSON(data []byte) error {
	var raw mapJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	built, err := ByLayout(raw.Layout)
	if err != nil {
		return err
	}
	m.layout = built.layout
	m.rooms = built.rooms
	m.names = built.names
	m.lower = built.lower
	m.mu.Lock()
	m.bodies = make(map[string][]string, len(raw.Bodies))
	maps.Copy(m.bodies, raw.Bodies)
	m.mu.Unlock()
	return nil
}

// ByLayout builds a fresh map for a known layout name
func ByLayout(layout string) (*Map, error) {
	switch layout {
	case "", SkeldLayout:
		return NewSkeld(), nil
	default:
		return nil, fmt.Errorf("unknown ship layout %q", layout)
	}
}

func sortedSet(s mapset.Set[string]) []string {
	out := make([]string, 0, s.Size())
	s.Each(func(name string) {
		out = append(out, name)
	})
	slices.Sort(out)
	return out
}
