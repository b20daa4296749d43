// Package sse fans game announcements out to Server-Sent Events subscribers.
package sse

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/aaronzipp/crewmate/internal/models"
	"github.com/aaronzipp/crewmate/internal/render"
	"github.com/aaronzipp/crewmate/internal/session"
)

const (
	// BufferSize is the per-subscriber message buffer
	BufferSize = 32

	// queueSize bounds the announcements waiting for one channel's limiter
	queueSize = 256
)

// Message is one SSE frame
type Message struct {
	Event string
	Data  string
}

// payload is the JSON body of an event frame
type payload struct {
	models.Event
	Text string `json:"text"`
}

type client struct {
	ch       chan Message
	playerID int64
}

type delivery struct {
	to     int64
	direct bool
	msg    Message
}

type room struct {
	clients map[*client]struct{}
	queue   chan delivery
	limiter *rate.Limiter
}

// Options configure a Hub
type Options struct {
	// Rate and Burst pace delivery per channel
	Rate  float64
	Burst int
	// SendTimeout is how long a slow subscriber may block one message
	SendTimeout time.Duration
	Logger      zerolog.Logger
}

// Hub delivers announcements to the subscribers of each channel. Delivery
// is asynchronous: Announce and Direct only enqueue.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]*room
	limit   rate.Limit
	burst   int
	timeout time.Duration
	log     zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var _ session.Notifier = (*Hub)(nil)

// NewHub creates a hub
func NewHub(opts Options) *Hub {
	h := &Hub{
		rooms:   make(map[string]*room),
		limit:   rate.Limit(opts.Rate),
		burst:   opts.Burst,
		timeout: opts.SendTimeout,
		log:     opts.Logger.With().Str("component", "sse").Logger(),
	}
	if opts.Rate <= 0 {
		h.limit = rate.Inf
	}
	if h.burst <= 0 {
		h.burst = 1
	}
	if h.timeout <= 0 {
		h.timeout = time.Second
	}
	h.ctx, h.cancel = context.WithCancel(context.Background())
	return h
}

// room returns the room of a channel, creating it and its pump. Callers
// hold h.mu for writing.
func (h *Hub) room(channelID string) *room {
	r, ok := h.rooms[channelID]
	if ok {
		return r
	}
	r = &room{
		clients: make(map[*client]struct{}),
		queue:   make(chan delivery, queueSize),
		limiter: rate.NewLimiter(h.limit, h.burst),
	}
	h.rooms[channelID] = r
	h.wg.Add(1)
	go h.pump(channelID, r)
	return r
}

// Subscribe registers a subscriber for a channel. playerID receives direct
// messages as well; zero subscribes to announcements only. The returned
// channel is closed when the hub releases the channel or unsubscribe runs.
func (h *Hub) Subscribe(channelID string, playerID int64) (<-chan Message, func()) {
	c := &client{ch: make(chan Message, BufferSize), playerID: playerID}
	h.mu.Lock()
	r := h.room(channelID)
	dup := 0
	for other := range r.clients {
		if playerID != 0 && other.playerID == playerID {
			dup++
		}
	}
	r.clients[c] = struct{}{}
	count := len(r.clients)
	h.mu.Unlock()

	if dup > 0 {
		h.log.Warn().Str("channel", channelID).Int64("player", playerID).Int("extra", dup).Msg("player opened additional streams")
	}
	h.log.Debug().Str("channel", channelID).Int("clients", count).Msg("subscriber added")

	var once sync.Once
	return c.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if r, ok := h.rooms[channelID]; ok {
				if _, ok := r.clients[c]; ok {
					delete(r.clients, c)
					close(c.ch)
				}
			}
		})
	}
}

// Announce queues an event for everyone in its channel
func (h *Hub) Announce(ev models.Event) {
	h.enqueue(ev.ChannelID, delivery{msg: encode(ev)})
}

// Direct queues an event for one player's subscriptions in its channel
func (h *Hub) Direct(playerID int64, ev models.Event) {
	h.enqueue(ev.ChannelID, delivery{to: playerID, direct: true, msg: encode(ev)})
}

func (h *Hub) enqueue(channelID string, d delivery) {
	if h.ctx.Err() != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	select {
	case h.room(channelID).queue <- d:
	default:
		h.log.Warn().Str("channel", channelID).Str("event", d.msg.Event).Msg("notification queue full, dropping")
	}
}

func encode(ev models.Event) Message {
	data, err := json.Marshal(payload{Event: ev, Text: render.Announcement(ev)})
	if err != nil {
		data = []byte(`{}`)
	}
	return Message{Event: string(ev.Kind), Data: string(data)}
}

// pump delivers a room's queue at the configured rate until the room is
// released or the hub closes
func (h *Hub) pump(channelID string, r *room) {
	defer h.wg.Done()
	defer h.closeClients(r)
	for {
		select {
		case <-h.ctx.Done():
			return
		case d, ok := <-r.queue:
			if !ok {
				return
			}
			if err := r.limiter.Wait(h.ctx); err != nil {
				return
			}
			h.fanout(channelID, r, d)
		}
	}
}

func (h *Hub) fanout(channelID string, r *room, d delivery) {
	h.mu.RLock()
	targets := make([]chan Message, 0, len(r.clients))
	for c := range r.clients {
		if !d.direct || c.playerID == d.to {
			targets = append(targets, c.ch)
		}
	}
	h.mu.RUnlock()

	sent := 0
	for _, ch := range targets {
		if h.send(ch, d.msg) {
			sent++
		}
	}
	h.log.Debug().
		Str("channel", channelID).
		Str("event", d.msg.Event).
		Int("sent", sent).
		Int("clients", len(targets)).
		Msg("delivered")
}

// send hands msg to one subscriber, giving up after the send timeout. A
// subscriber closed concurrently is skipped.
func (h *Hub) send(ch chan Message, msg Message) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	timer := time.NewTimer(h.timeout)
	defer timer.Stop()
	select {
	case ch <- msg:
		return true
	case <-timer.C:
		return false
	}
}

func (h *Hub) closeClients(r *room) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range r.clients {
		close(c.ch)
		delete(r.clients, c)
	}
}

// Release drops a channel once everything queued for it has been delivered.
// Its subscribers' streams are then closed.
func (h *Hub) Release(channelID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[channelID]; ok {
		delete(h.rooms, channelID)
		close(r.queue)
	}
}

// Subscribers counts the subscribers of a channel
func (h *Hub) Subscribers(channelID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if r, ok := h.rooms[channelID]; ok {
		return len(r.clients)
	}
	return 0
}

// Close stops every pump and closes all streams
func (h *Hub) Close() {
	h.cancel()
	h.wg.Wait()
}
