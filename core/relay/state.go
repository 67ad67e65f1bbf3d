package relay

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/eapache/queue"
)

// state is the session registry and pending delivery queue.
// It is owned by the hub's actor goroutine and never touched from anywhere else.
//
// The two registry maps are not kept consistent with each other: a key may point at a
// connection that has since disconnected. Such lookups count as delivery failures.
type state[P any] struct {
	sessions map[ConnID]*Outbound[P]
	clients  map[string]ConnID
	pending  map[string]*queue.Queue // FIFO of P per key, removed once empty

	maxPending int
	visitors   int64
	dropped    int64
	logger     *slog.Logger
}

func newState[P any](maxPending int, logger *slog.Logger) *state[P] {
	return &state[P]{
		sessions:   make(map[ConnID]*Outbound[P]),
		clients:    make(map[string]ConnID),
		pending:    make(map[string]*queue.Queue),
		maxPending: maxPending,
		logger:     logger,
	}
}

func (s *state[P]) connect(out *Outbound[P]) ConnID {
	var id ConnID
	for {
		id = ConnID(rand.Uint64())
		if _, taken := s.sessions[id]; !taken && id != 0 {
			break
		}
	}

	s.sessions[id] = out
	s.visitors++
	return id
}

func (s *state[P]) disconnect(id ConnID) bool {
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

// bind records the key's connection, replacing any earlier one.
func (s *state[P]) bind(key string, id ConnID) {
	s.clients[key] = id
}

func (s *state[P]) outbound(key string) (*Outbound[P], bool) {
	id, ok := s.clients[key]
	if !ok {
		return nil, false
	}
	out, ok := s.sessions[id]
	return out, ok
}

// deliver sends p now if the key resolves to a live outbound and nothing is queued
// ahead of it; otherwise p joins the key's pending queue.
func (s *state[P]) deliver(ctx context.Context, key string, p P) bool {
	if _, queued := s.pending[key]; !queued {
		if out, ok := s.outbound(key); ok && out.trySend(p) {
			return true
		}
	}

	s.enqueue(ctx, key, p)
	s.flush(key)
	_, stillQueued := s.pending[key]
	return !stillQueued
}

func (s *state[P]) enqueue(ctx context.Context, key string, p P) {
	q, ok := s.pending[key]
	if !ok {
		q = queue.New()
		s.pending[key] = q
	}

	if s.maxPending > 0 && q.Length() >= s.maxPending {
		q.Remove()
		s.dropped++
		s.logger.WarnContext(ctx, "pending queue full, dropped oldest payload",
			slog.Int("max_pending", s.maxPending),
			slog.Int64("dropped_total", s.dropped))
	}

	q.Add(p)
}

// requeue puts ps at the front of the key's queue, ahead of anything queued since,
// then applies the bound and tries to flush.
func (s *state[P]) requeue(ctx context.Context, key string, ps []P) {
	q := queue.New()
	for _, p := range ps {
		q.Add(p)
	}
	if old, ok := s.pending[key]; ok {
		for old.Length() > 0 {
			q.Add(old.Remove())
		}
	}

	for s.maxPending > 0 && q.Length() > s.maxPending {
		q.Remove()
		s.dropped++
		s.logger.WarnContext(ctx, "pending queue full, dropped oldest payload",
			slog.Int("max_pending", s.maxPending),
			slog.Int64("dropped_total", s.dropped))
	}

	s.pending[key] = q
	s.flush(key)
}

// flush drains the key's queue in order while sends succeed and returns the number sent.
// The first failed send stops the drain and leaves the rest queued.
func (s *state[P]) flush(key string) int {
	q, ok := s.pending[key]
	if !ok {
		return 0
	}

	sent := 0
	if out, ok := s.outbound(key); ok {
		for q.Length() > 0 {
			if !out.trySend(q.Peek().(P)) {
				break
			}
			q.Remove()
			sent++
		}
	}

	if q.Length() == 0 {
		delete(s.pending, key)
	}
	return sent
}

// retry is the hub's periodic tick.
func (s *state[P]) retry(ctx context.Context, now time.Time) {
	if len(s.pending) == 0 {
		return
	}

	sent := 0
	for key := range s.pending {
		sent += s.flush(key)
	}

	if sent > 0 {
		s.logger.DebugContext(ctx, "redelivered pending payloads",
			slog.Int("sent", sent),
			slog.Int("pending_keys", len(s.pending)),
			slog.Time("at", now))
	}
}

func (s *state[P]) snapshot(key string) []P {
	q, ok := s.pending[key]
	if !ok {
		return nil
	}
	out := make([]P, q.Length())
	for i := range out {
		out[i] = q.Get(i).(P)
	}
	return out
}

func (s *state[P]) stats() Stats {
	queued := 0
	for _, q := range s.pending {
		queued += q.Length()
	}
	return Stats{
		Connections:     len(s.sessions),
		BoundKeys:       len(s.clients),
		PendingKeys:     len(s.pending),
		PendingMessages: queued,
		Visitors:        s.visitors,
		Dropped:         s.dropped,
	}
}

func retryTick[P any](ctx context.Context, s *state[P], now time.Time) {
	s.retry(ctx, now)
}
