package rpc

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// Mailbox serializes key delivery to the engine. The UI thread pushes
// translated keys without ever blocking; a single consumer goroutine
// sends them in order. Unbounded on purpose: a stalled engine must slow
// key delivery down, not the host's input handling.
type Mailbox struct {
	send func(keys string) error

	mu    sync.Mutex
	queue []string

	wake chan struct{}
	stop chan struct{}
	done chan struct{}

	pushed    atomic.Uint64
	delivered atomic.Uint64

	stopped  atomic.Bool
	stopOnce sync.Once
}

// NewMailbox creates a mailbox that delivers keys through send.
func NewMailbox(send func(keys string) error) *Mailbox {
	return &Mailbox{
		send: send,
		wake: make(chan struct{}, 1),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Start launches the consumer goroutine.
func (m *Mailbox) Start() {
	go m.run()
}

// Push queues keys for delivery. Safe to call from any goroutine; a
// push after Stop is dropped.
func (m *Mailbox) Push(keys string) {
	if keys == "" || m.stopped.Load() {
		return
	}

	m.mu.Lock()
	m.queue = append(m.queue, keys)
	m.mu.Unlock()
	m.pushed.Add(1)

	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// Flush blocks until every key pushed before the call has been handed
// to send and send returned. Reports false when the mailbox stopped or
// the timeout passed first. The bridge flushes before the insert-exit
// upload so the Escape is processed ahead of it.
func (m *Mailbox) Flush(timeout time.Duration) bool {
	target := m.pushed.Load()
	deadline := time.Now().Add(timeout)
	for m.delivered.Load() < target {
		if m.stopped.Load() || time.Now().After(deadline) {
			return false
		}
		time.Sleep(time.Millisecond)
	}
	return true
}

// Len returns the number of queued entries not yet delivered.
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Stop halts the consumer and waits for it to finish. Queued keys that
// were not delivered yet are dropped; the engine is being torn down
// when this runs.
func (m *Mailbox) Stop() {
	m.stopOnce.Do(func() {
		m.stopped.Store(true)
		close(m.stop)
		<-m.done
	})
}

func (m *Mailbox) run() {
	defer close(m.done)

	for {
		select {
		case <-m.stop:
			return
		case <-m.wake:
		}

		for {
			batch := m.take()
			if len(batch) == 0 {
				break
			}
			for _, keys := range batch {
				select {
				case <-m.stop:
					return
				default:
				}
				err := m.send(keys)
				m.delivered.Add(1)
				if err != nil {
					if errors.Is(err, ErrShutdown) {
						return
					}
					// Delivery errors surface through the caller's
					// timeout accounting; keep draining.
				}
			}
		}
	}
}

func (m *Mailbox) take() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	batch := m.queue
	m.queue = nil
	return batch
}
