package game

import "sync"

type signals struct {
	mu     sync.Mutex
	nextID int
	state  map[int]func(Snapshot)
	turn   map[int]func(TurnHistoryEntry)
}

// Subscribe registers fn for every state change. The returned func removes
// the subscription.
func (s *Service) Subscribe(fn func(Snapshot)) func() {
	s.subs.mu.Lock()
	defer s.subs.mu.Unlock()
	if s.subs.state == nil {
		s.subs.state = map[int]func(Snapshot){}
	}
	id := s.subs.nextID
	s.subs.nextID++
	s.subs.state[id] = fn
	return func() {
		s.subs.mu.Lock()
		delete(s.subs.state, id)
		s.subs.mu.Unlock()
	}
}

// SubscribeTurnEnded registers fn for the entry appended by each NextTurn.
func (s *Service) SubscribeTurnEnded(fn func(TurnHistoryEntry)) func() {
	s.subs.mu.Lock()
	defer s.subs.mu.Unlock()
	if s.subs.turn == nil {
		s.subs.turn = map[int]func(TurnHistoryEntry){}
	}
	id := s.subs.nextID
	s.subs.nextID++
	s.subs.turn[id] = fn
	return func() {
		s.subs.mu.Lock()
		delete(s.subs.turn, id)
		s.subs.mu.Unlock()
	}
}

func (g *signals) emitState(snap Snapshot) {
	g.mu.Lock()
	fns := make([]func(Snapshot), 0, len(g.state))
	for _, fn := range g.state {
		fns = append(fns, fn)
	}
	g.mu.Unlock()
	for _, fn := range fns {
		fn(snap.Clone())
	}
}

func (g *signals) emitTurn(entry TurnHistoryEntry) {
	g.mu.Lock()
	fns := make([]func(TurnHistoryEntry), 0, len(g.turn))
	for _, fn := range g.turn {
		fns = append(fns, fn)
	}
	g.mu.Unlock()
	for _, fn := range fns {
		fn(entry.clone())
	}
}
