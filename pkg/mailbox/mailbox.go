package mailbox

import (
	"sync"
	"sync/atomic"
)

// Mailbox holds at most one pending value. Publish overwrites whatever
// is pending and never blocks, consumers drain at their own pace.
type Mailbox[T any] struct {
	mu      sync.Mutex
	value   T
	pending bool
	notify  chan struct{}
	drops   uint64
	sent    uint64
}

func New[T any]() *Mailbox[T] {
	return &Mailbox[T]{notify: make(chan struct{}, 1)}
}

func (m *Mailbox[T]) Publish(v T) {
	m.mu.Lock()
	if m.pending {
		atomic.AddUint64(&m.drops, 1)
	}
	m.value = v
	m.pending = true
	m.mu.Unlock()

	atomic.AddUint64(&m.sent, 1)
	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// TryTake returns the pending value if there is one.
func (m *Mailbox[T]) TryTake() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	if !m.pending {
		return zero, false
	}
	v := m.value
	m.value = zero
	m.pending = false
	return v, true
}

// Notify is signalled after a publish, a wakeup may cover several
// publishes and may find the box already drained.
func (m *Mailbox[T]) Notify() <-chan struct{} {
	return m.notify
}

// Drops counts values overwritten before anybody took them.
func (m *Mailbox[T]) Drops() uint64 {
	return atomic.LoadUint64(&m.drops)
}

func (m *Mailbox[T]) Published() uint64 {
	return atomic.LoadUint64(&m.sent)
}
