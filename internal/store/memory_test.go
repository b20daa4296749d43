package store

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/aaronzipp/crewmate/internal/config"
	"github.com/aaronzipp/crewmate/internal/models"
	"github.com/aaronzipp/crewmate/internal/session"
)

func newSession(t *testing.T, channel, code string) *session.Session {
	t.Helper()
	s := session.New(session.Options{
		Game:   models.NewGame(channel+"-id", channel, code, 6, models.RoleQuotas{Impostors: 1}),
		Tuning: config.DefaultTuning(),
		Logger: zerolog.Nop(),
	})
	t.Cleanup(s.Close)
	return s
}

func TestSessionStore(t *testing.T) {
	st := NewSessionStore()
	a := newSession(t, "c1", "AAA111")

	assert.True(t, st.Add(a))
	assert.False(t, st.Add(newSession(t, "c1", "BBB222")), "one session per channel")
	assert.True(t, st.Exists("c1"))
	assert.True(t, st.CodeTaken("AAA111"))
	assert.False(t, st.CodeTaken("BBB222"))

	got, ok := st.GetByCode("AAA111")
	assert.True(t, ok)
	assert.Same(t, a, got)
	got, ok = st.Get("c1")
	assert.True(t, ok)
	assert.Same(t, a, got)
	assert.Len(t, st.All(), 1)
}

func TestSessionStoreRemoveOnlyCurrent(t *testing.T) {
	st := NewSessionStore()
	old := newSession(t, "c1", "AAA111")
	assert.True(t, st.Add(old))
	assert.True(t, st.Remove(old))
	assert.False(t, st.Remove(old))

	fresh := newSession(t, "c1", "CCC333")
	assert.True(t, st.Add(fresh))
	assert.False(t, st.Remove(old), "a stale session must not evict its successor")
	assert.Equal(t, 1, st.Len())
	_, ok := st.GetByCode("AAA111")
	assert.False(t, ok)
}
