package agent

import "sync"

// Selection guards re-entrant loads: each Begin supersedes the previous
// ticket of the same flow, and a superseded result must be discarded.
type Selection struct {
	mu   sync.Mutex
	gens map[string]uint64
}

// Ticket identifies one load of a flow.
type Ticket struct {
	flow string
	key  string
	gen  uint64
}

func (t Ticket) Key() string { return t.key }

func NewSelection() *Selection {
	return &Selection{gens: make(map[string]uint64)}
}

// Begin starts a load for flow keyed by key.
func (s *Selection) Begin(flow, key string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gens[flow]++
	return Ticket{flow: flow, key: key, gen: s.gens[flow]}
}

// Current reports whether t is still the latest load of its flow.
func (s *Selection) Current(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[t.flow] == t.gen
}
