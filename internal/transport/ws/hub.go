package ws

import (
	"log/slog"
	"sync"
)

type Conn interface {
	Send(v any) error
	Close() error
}

// Hub is the subscription registry and fanout path shared by the chat and
// presence channels. A subscription is (conn, group, token): the token is the
// caller-supplied request id for chat joins, so one physical connection can
// hold several logical subscriptions to the same group; presence channels
// subscribe with an empty token.
type Hub struct {
	mu     sync.RWMutex
	groups map[string]map[Conn]map[string]struct{} // group -> conn -> tokens
	conns  map[Conn]map[string]struct{}            // conn -> groups (for Drop)
}

func NewHub() *Hub {
	return &Hub{
		groups: make(map[string]map[Conn]map[string]struct{}),
		conns:  make(map[Conn]map[string]struct{}),
	}
}

func (h *Hub) Subscribe(c Conn, group, token string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	gs, ok := h.groups[group]
	if !ok {
		gs = make(map[Conn]map[string]struct{})
		h.groups[group] = gs
	}
	tokens, ok := gs[c]
	if !ok {
		tokens = make(map[string]struct{})
		gs[c] = tokens
	}
	tokens[token] = struct{}{}

	cg, ok := h.conns[c]
	if !ok {
		cg = make(map[string]struct{})
		h.conns[c] = cg
	}
	cg[group] = struct{}{}
}

// Unsubscribe removes every token the connection holds for the group.
// No-op if the mapping is absent.
func (h *Hub) Unsubscribe(c Conn, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unsubscribeLocked(c, group)
}

func (h *Hub) unsubscribeLocked(c Conn, group string) {
	if gs, ok := h.groups[group]; ok {
		delete(gs, c)
		if len(gs) == 0 {
			delete(h.groups, group)
		}
	}
	if cg, ok := h.conns[c]; ok {
		delete(cg, group)
		if len(cg) == 0 {
			delete(h.conns, c)
		}
	}
}

// Drop removes all subscriptions for the connection. Called exactly once on
// the close path; calling it again is a no-op.
func (h *Hub) Drop(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for group := range h.conns[c] {
		if gs, ok := h.groups[group]; ok {
			delete(gs, c)
			if len(gs) == 0 {
				delete(h.groups, group)
			}
		}
	}
	delete(h.conns, c)
}

func (h *Hub) Members(group string) []Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()

	gs := h.groups[group]
	if len(gs) == 0 {
		return nil
	}
	out := make([]Conn, 0, len(gs))
	for c := range gs {
		out = append(out, c)
	}
	return out
}

// Publish delivers one payload per (subscriber, token) to the members of the
// group at call time; build receives the token so chat pushes can echo the
// request id of each logical subscription. Delivery is synchronous, so
// payloads published from one goroutine reach each subscriber in publish
// order. A failed send is logged and the dead connection is dropped and
// closed; the remaining subscribers still get theirs.
func (h *Hub) Publish(group string, build func(token string) any) {
	type target struct {
		conn   Conn
		tokens []string
	}

	h.mu.RLock()
	targets := make([]target, 0, len(h.groups[group]))
	for c, tokens := range h.groups[group] {
		ts := make([]string, 0, len(tokens))
		for t := range tokens {
			ts = append(ts, t)
		}
		targets = append(targets, target{conn: c, tokens: ts})
	}
	h.mu.RUnlock()

	for _, t := range targets {
		for _, token := range t.tokens {
			if err := t.conn.Send(build(token)); err != nil {
				slog.Warn("fanout delivery failed, dropping connection",
					"group", group, "err", err)
				h.Drop(t.conn)
				_ = t.conn.Close()
				break
			}
		}
	}
}
