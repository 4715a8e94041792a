// Package runner implements the threaded-action contract: user actions
// that must not block the hook thread get a Starting phase on the
// caller's goroutine, a Run phase on a bounded worker pool, and a
// Finished(result) phase back on a completion goroutine — each locking
// phase documented by the caller, not by this package. Panics from Run
// or Finished are logged and swallowed.
package runner

import (
	"log"
)

// Threaded is the user-facing contract a blocking action implements.
// Starting runs synchronously, holding the hook lock, on whatever
// goroutine calls Pool.Submit. Run executes on the worker pool without
// the lock — it is the only phase allowed to block. Finished runs on a
// completion goroutine inside the callback Pool was constructed with
// (normally one that reacquires the hook lock).
type Threaded interface {
	Starting()
	Run() (result any, err error)
	Finished(result any, err error)
}

// Pool runs Threaded actions with bounded concurrency. The zero value is
// not usable; construct with New.
type Pool struct {
	sem    chan struct{}
	logger *log.Logger
	// withLock wraps the Finished phase so it runs holding whatever lock
	// the caller's engine requires (e.g. engine.RunFinished). A pool used
	// outside that context may pass a no-op identity wrapper.
	withLock func(func())
}

const defaultMaxWorkers = 16

// New creates a Pool bounded to maxWorkers concurrent Run() calls.
// withLock wraps every Finished call (e.g. (*engine.Engine).RunFinished);
// pass a function that just invokes its argument if no locking is
// needed. maxWorkers <= 0 uses the default of 16.
func New(maxWorkers int, withLock func(func()), logger *log.Logger) *Pool {
	if maxWorkers <= 0 {
		maxWorkers = defaultMaxWorkers
	}
	if withLock == nil {
		withLock = func(fn func()) { fn() }
	}
	return &Pool{
		sem:      make(chan struct{}, maxWorkers),
		logger:   logger,
		withLock: withLock,
	}
}

// Submit runs t's three phases per the Threaded contract. The caller
// must already hold the hook lock when calling Submit, since Starting
// runs synchronously on the calling goroutine before Submit returns.
// Run and Finished happen asynchronously, and even worker-slot
// acquisition happens on the spawned goroutine, so a momentarily full
// pool never blocks the hook thread.
func (p *Pool) Submit(t Threaded) {
	t.Starting()

	go func() {
		p.sem <- struct{}{}
		defer func() { <-p.sem }()

		result, err := p.runSafely(t)

		p.withLock(func() {
			p.finishedSafely(t, result, err)
		})
	}()
}

func (p *Pool) runSafely(t Threaded) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			if p.logger != nil {
				p.logger.Printf("threaded action run() panicked: %v", r)
			}
			result, err = nil, errPanicked
		}
	}()
	return t.Run()
}

func (p *Pool) finishedSafely(t Threaded, result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			if p.logger != nil {
				p.logger.Printf("threaded action finished() panicked: %v", r)
			}
		}
	}()
	t.Finished(result, err)
}

type runPanicError struct{}

func (runPanicError) Error() string { return "threaded action run() panicked" }

var errPanicked = runPanicError{}
