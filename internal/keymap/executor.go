package keymap

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

const defaultQueueSize = 16

// luaCall is one operation queued for the Lua goroutine.
type luaCall struct {
	fn     func(l *lua.LState) error
	result chan error
}

// executor serializes script operations onto the one goroutine that
// owns the Lua state. The LState is not goroutine safe, and loads
// arrive both from startup and from settings reload.
type executor struct {
	queue chan *luaCall
	stop  chan struct{}
	done  chan struct{}

	closed    atomic.Bool
	closeOnce sync.Once
}

// newExecutor takes ownership of the state and starts its goroutine.
// After this call the state must only be touched through execute.
func newExecutor(l *lua.LState) *executor {
	e := &executor{
		queue: make(chan *luaCall, defaultQueueSize),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go e.run(l)
	return e
}

func (e *executor) run(l *lua.LState) {
	defer close(e.done)
	defer l.Close()

	for {
		select {
		case <-e.stop:
			e.drain()
			return
		case c := <-e.queue:
			c.result <- runCall(l, c)
		}
	}
}

// runCall executes one operation. gopher-lua reports errors outside
// protected calls by panicking; a longjmp out of a script must not
// take the calling thread down with it.
func runCall(l *lua.LState, c *luaCall) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch v := r.(type) {
			case error:
				err = v
			default:
				err = fmt.Errorf("lua: %v", r)
			}
		}
	}()
	return c.fn(l)
}

// drain answers calls that were queued before the stop was observed.
func (e *executor) drain() {
	for {
		select {
		case c := <-e.queue:
			c.result <- ErrClosed
		default:
			return
		}
	}
}

// execute runs fn on the Lua goroutine and waits for its result, the
// context, or shutdown, whichever comes first.
func (e *executor) execute(ctx context.Context, fn func(l *lua.LState) error) error {
	if e.closed.Load() {
		return ErrClosed
	}

	c := &luaCall{fn: fn, result: make(chan error, 1)}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-e.stop:
		return ErrClosed
	case e.queue <- c:
	}

	select {
	case <-ctx.Done():
		// The call stays queued and will still run; its result is
		// dropped.
		return ctx.Err()
	case err := <-c.result:
		return err
	case <-e.done:
		// The runner exited between our enqueue and its drain. A
		// result delivered in the same instant still wins.
		select {
		case err := <-c.result:
			return err
		default:
			return ErrClosed
		}
	}
}

// close stops the runner and waits for it to release the Lua state.
func (e *executor) close() {
	e.closeOnce.Do(func() {
		e.closed.Store(true)
		close(e.stop)
		<-e.done
	})
}
