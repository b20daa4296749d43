package sse

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronzipp/crewmate/internal/models"
)

func newTestHub(t *testing.T, opts Options) *Hub {
	t.Helper()
	opts.Logger = zerolog.Nop()
	h := NewHub(opts)
	t.Cleanup(h.Close)
	return h
}

func receive(t *testing.T, ch <-chan Message) Message {
	t.Helper()
	select {
	case msg, ok := <-ch:
		require.True(t, ok, "stream closed")
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message")
		return Message{}
	}
}

func assertQuiet(t *testing.T, ch <-chan Message) {
	t.Helper()
	select {
	case msg := <-ch:
		t.Fatalf("unexpected message %s", msg.Event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestAnnounceAndDirect(t *testing.T) {
	h := newTestHub(t, Options{})
	alice, stopA := h.Subscribe("c1", 1)
	defer stopA()
	bob, stopB := h.Subscribe("c1", 2)
	defer stopB()
	other, stopO := h.Subscribe("c2", 1)
	defer stopO()

	h.Announce(models.Event{Kind: models.EventMeetingCalled, ChannelID: "c1", Actor: "Red"})
	for _, ch := range []<-chan Message{alice, bob} {
		msg := receive(t, ch)
		assert.Equal(t, "meeting_called", msg.Event)
		var body map[string]any
		require.NoError(t, json.Unmarshal([]byte(msg.Data), &body))
		assert.Equal(t, "Red", body["actor"])
		assert.Equal(t, "Red called an emergency meeting! Discuss and vote.", body["text"])
	}

	h.Direct(2, models.Event{Kind: models.EventRoleAssigned, ChannelID: "c1", Role: models.RoleImpostor})
	assert.Equal(t, "role_assigned", receive(t, bob).Event)
	assertQuiet(t, alice)
	assertQuiet(t, other)
	assert.Equal(t, 2, h.Subscribers("c1"))
}

func TestDeliveryIsRateLimited(t *testing.T) {
	h := newTestHub(t, Options{Rate: 20, Burst: 1})
	ch, stop := h.Subscribe("c1", 0)
	defer stop()

	start := time.Now()
	for range 5 {
		h.Announce(models.Event{Kind: models.EventVoteCast, ChannelID: "c1"})
	}
	for range 5 {
		receive(t, ch)
	}
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestSlowSubscriberDoesNotStallOthers(t *testing.T) {
	h := newTestHub(t, Options{SendTimeout: 5 * time.Millisecond})
	_, stopSlow := h.Subscribe("c1", 1)
	defer stopSlow()
	fast, stopFast := h.Subscribe("c1", 2)
	defer stopFast()

	const n = BufferSize + 10
	for range n {
		h.Announce(models.Event{Kind: models.EventTaskCompleted, ChannelID: "c1"})
	}
	for range n {
		receive(t, fast)
	}
}

func TestReleaseDrainsThenCloses(t *testing.T) {
	h := newTestHub(t, Options{})
	ch, stop := h.Subscribe("c1", 1)
	defer stop()

	h.Announce(models.Event{Kind: models.EventGameEnded, ChannelID: "c1", Winner: models.WinnerCrewmates})
	h.Release("c1")

	assert.Equal(t, "game_ended", receive(t, ch).Event)
	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("stream not closed after release")
	}
	assert.Zero(t, h.Subscribers("c1"))
}

func TestUnsubscribeCloses(t *testing.T) {
	h := newTestHub(t, Options{})
	ch, stop := h.Subscribe("c1", 1)
	stop()
	stop()
	_, ok := <-ch
	assert.False(t, ok)
	assert.Zero(t, h.Subscribers("c1"))
}
