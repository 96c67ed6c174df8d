package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"cashflow/internal/game"
)

// StreamEvent is one server-sent event: "state" after every command, "turn"
// after each completed year.
type StreamEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type stateSummary struct {
	Player   game.PlayerState `json:"player"`
	Won      bool             `json:"won"`
	NetWorth float64          `json:"netWorth"`
}

// Hub fans game signals out to connected stream clients. Slow clients miss
// events rather than block the game.
type Hub struct {
	mu      sync.Mutex
	clients map[chan []byte]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[chan []byte]struct{})}
}

// Attach subscribes the hub to svc. The returned func detaches it.
func (h *Hub) Attach(svc *game.Service) func() {
	stopState := svc.Subscribe(func(s game.Snapshot) {
		h.Broadcast(StreamEvent{Type: "state", Data: stateSummary{Player: s.PlayerState, Won: s.Won, NetWorth: s.NetWorth()}})
	})
	stopTurn := svc.SubscribeTurnEnded(func(e game.TurnHistoryEntry) {
		h.Broadcast(StreamEvent{Type: "turn", Data: e})
	})
	return func() {
		stopState()
		stopTurn()
	}
}

func (h *Hub) Broadcast(ev StreamEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- data:
		default:
		}
	}
}

func (h *Hub) Subscribe() (chan []byte, func()) {
	ch := make(chan []byte, 32)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		delete(h.clients, ch)
		h.mu.Unlock()
	}
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// handleStream serves game events as Server-Sent Events until the client
// goes away.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	ch, unsub := s.hub.Subscribe()
	defer unsub()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	keepAlive := time.NewTicker(25 * time.Second)
	defer keepAlive.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case data := <-ch:
			var ev StreamEvent
			_ = json.Unmarshal(data, &ev)
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
			flusher.Flush()
		case <-keepAlive.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}
