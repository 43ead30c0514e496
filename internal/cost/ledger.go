// Package cost tallies the paid model calls made during a run.
package cost

import (
	"sort"
	"sync"

	"github.com/grazbites/scraper/pkg/anthropic"
)

// Entry is the accumulated usage of one phase.
type Entry struct {
	Calls        int
	InputTokens  int64
	OutputTokens int64
	USD          float64
}

func (e *Entry) add(o Entry) {
	e.Calls += o.Calls
	e.InputTokens += o.InputTokens
	e.OutputTokens += o.OutputTokens
	e.USD += o.USD
}

// Ledger accumulates token usage per phase. A nil Ledger ignores records.
// Safe for concurrent use.
type Ledger struct {
	mu     sync.Mutex
	phases map[string]*Entry
}

// NewLedger creates an empty Ledger.
func NewLedger() *Ledger {
	return &Ledger{phases: make(map[string]*Entry)}
}

// Record adds one call's usage, priced for model.
func (l *Ledger) Record(model, phase string, u anthropic.TokenUsage) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.phases[phase]
	if !ok {
		e = &Entry{}
		l.phases[phase] = e
	}
	e.add(Entry{
		Calls:        1,
		InputTokens:  u.InputTokens,
		OutputTokens: u.OutputTokens,
		USD:          u.EstimateCost(model),
	})
}

// Phases returns the recorded phase names in sorted order.
func (l *Ledger) Phases() []string {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	names := make([]string, 0, len(l.phases))
	for name := range l.phases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Phase returns the usage of one phase.
func (l *Ledger) Phase(name string) Entry {
	if l == nil {
		return Entry{}
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.phases[name]; ok {
		return *e
	}
	return Entry{}
}

// Total sums every phase.
func (l *Ledger) Total() Entry {
	var total Entry
	if l == nil {
		return total
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, e := range l.phases {
		total.add(*e)
	}
	return total
}
