package alert

import (
	"context"
	"sync"
)

// Deduper wraps a Notifier and suppresses re-delivery of alerts it has
// already sent recently. A polling monitor re-evaluates an overlapping
// catalog window every cycle, so an unchanged trigger would otherwise fire
// on every tick. Only successful sends are remembered, so a failed
// delivery is retried on the next cycle.
type Deduper struct {
	inner Notifier
	seen  *lruSet
}

// NewDeduper creates a dedup decorator around a notifier, remembering at
// most maxEntries distinct alerts.
func NewDeduper(inner Notifier, maxEntries int) *Deduper {
	return &Deduper{
		inner: inner,
		seen:  newLRUSet(maxEntries),
	}
}

func (d *Deduper) Send(ctx context.Context, a Alert) error {
	key := a.RuleName + "|" + a.Message
	if d.seen.contains(key) {
		return nil
	}
	if err := d.inner.Send(ctx, a); err != nil {
		return err
	}
	d.seen.add(key)
	return nil
}

// lruSet is a thread-safe bounded set with least-recently-used eviction.
type lruSet struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key  string
	prev *entry
	next *entry
}

func newLRUSet(maxEntries int) *lruSet {
	return &lruSet{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (s *lruSet) contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	s.moveToFront(e)
	return true
}

func (s *lruSet) add(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		s.moveToFront(e)
		return
	}

	e := &entry{key: key}
	s.entries[key] = e
	s.addToFront(e)

	if len(s.entries) > s.maxEntries {
		s.evictTail()
	}
}

func (s *lruSet) moveToFront(e *entry) {
	if e == s.head {
		return
	}
	s.remove(e)
	s.addToFront(e)
}

func (s *lruSet) addToFront(e *entry) {
	e.next = s.head
	e.prev = nil
	if s.head != nil {
		s.head.prev = e
	}
	s.head = e
	if s.tail == nil {
		s.tail = e
	}
}

func (s *lruSet) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		s.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		s.tail = e.prev
	}
}

func (s *lruSet) evictTail() {
	if s.tail == nil {
		return
	}
	delete(s.entries, s.tail.key)
	s.remove(s.tail)
}
