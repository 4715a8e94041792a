// Package action implements keytable.Invokable structured actions
// bound directly to key conditions: the threaded-action adapter wiring
// the Starting/Run/Finished contract to a real engine + worker pool,
// plus the built-in bindable actions — LaunchApplication, MoveWindow,
// and the chooser-based clipboard-history actions.
package action

import (
	"log"

	"github.com/keymapd/keyhac/internal/keytable"
	"github.com/keymapd/keyhac/internal/runner"
)

// EngineLock is the pair of locking hooks a Threaded action's starting()
// and finished() phases must run under — satisfied by
// (*engine.Engine).RunStarting / RunFinished. Declared here instead of
// imported from internal/engine to avoid a dependency cycle (the engine
// never needs to know about this package; actions are registered into
// its keytables from the wiring site).
type EngineLock interface {
	RunStarting(fn func())
	RunFinished(fn func())
}

// Threaded is the user-facing contract for blocking actions: Starting
// runs holding the hook lock, Run runs on the worker pool without it,
// Finished(result) runs holding the lock again.
type Threaded interface {
	Starting()
	Run() (result any, err error)
	Finished(result any, err error)
}

// ThreadedAction adapts a Threaded implementation to keytable.Invokable,
// threading its three phases through the engine's lock discipline and a
// bounded worker pool.
type ThreadedAction struct {
	Engine EngineLock
	Pool   *runner.Pool
	Inner  Threaded
	Logger *log.Logger
}

// NewThreadedAction builds the Invokable binding for inner.
func NewThreadedAction(engine EngineLock, pool *runner.Pool, inner Threaded, logger *log.Logger) keytable.Invokable {
	return &ThreadedAction{Engine: engine, Pool: pool, Inner: inner, Logger: logger}
}

// Invoke runs on the hook thread with the lock already held (it is
// called from the engine's dispatch); RunStarting names that phase
// without re-locking. The Finished phase's lock comes from the pool's
// own withLock wrapper (wired to RunFinished at construction), so the
// bridge below must not wrap it a second time — the engine's mutex is
// not reentrant.
func (a *ThreadedAction) Invoke() {
	a.Engine.RunStarting(a.Inner.Starting)
	a.Pool.Submit(threadedBridge{inner: a.Inner, logger: a.Logger})
}

// threadedBridge adapts action.Threaded (whose Starting phase has
// already run) to runner.Threaded.
type threadedBridge struct {
	inner  Threaded
	logger *log.Logger
}

func (b threadedBridge) Starting() {} // already run by ThreadedAction.Invoke
func (b threadedBridge) Run() (any, error) {
	return b.inner.Run()
}
func (b threadedBridge) Finished(result any, err error) {
	b.inner.Finished(result, err)
}
