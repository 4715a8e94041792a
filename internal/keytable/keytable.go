// Package keytable implements the insertion-ordered KeyCondition → Action
// mapping used both for top-level, focus-conditioned tables and for
// nested multi-stroke tables.
package keytable

import (
	"log"

	"github.com/keymapd/keyhac/internal/keyexpr"
)

// Kind tags which variant of Action is populated.
type Kind int

const (
	Call Kind = iota
	Sequence
	Enter
	Structured
)

// Invokable is the entrypoint of a structured action (Threaded,
// MoveWindow, LaunchApplication, chooser-based, …). Invoke runs on the
// hook thread, under the hook lock.
type Invokable interface {
	Invoke()
}

// Action is a tagged union: a callable, a literal key sequence played
// through an Input context, a nested KeyTable (multi-stroke), or a
// structured action object.
type Action struct {
	Kind       Kind
	Call       func()
	Sequence   []string
	Enter      *Table
	Structured Invokable
}

// CallAction wraps a plain function as a Call action.
func CallAction(fn func()) Action { return Action{Kind: Call, Call: fn} }

// SequenceAction wraps an ordered list of key expressions as a Sequence
// action.
func SequenceAction(exprs ...string) Action { return Action{Kind: Sequence, Sequence: exprs} }

// EnterAction wraps a nested table as an Enter (multi-stroke) action.
func EnterAction(t *Table) Action { return Action{Kind: Enter, Enter: t} }

// StructuredAction wraps an Invokable as a Structured action.
func StructuredAction(inv Invokable) Action { return Action{Kind: Structured, Structured: inv} }

type entry struct {
	cond    keyexpr.KeyCondition
	action  Action
	deleted bool
}

// Table is an insertion-ordered mapping of KeyCondition to Action.
// Lookup uses modifier equivalence (keyexpr.KeyCondition.Equal):
// conditions are bucketed by virtual key and compared within the
// bucket, since Go's native map equality cannot express that relation.
// Entries are stored in a single insertion-ordered slice; buckets hold
// indices into it so a re-Set of an existing key updates in place
// without disturbing order.
type Table struct {
	Name    string
	entries []entry
	buckets map[int][]int
}

// New creates an empty table, optionally named for diagnostics (shown in
// logs when a nested multi-stroke table is entered or left).
func New(name string) *Table {
	return &Table{Name: name, buckets: map[int][]int{}}
}

func bucketKey(c keyexpr.KeyCondition) int { return int(c.VK) }

// Set registers expr → action. An invalid key expression is logged and
// dropped, matching the error taxonomy's treatment of InvalidExpression.
func (t *Table) Set(tables *keyexpr.Tables, expr string, action Action, logger *log.Logger) {
	cond, err := tables.Parse(expr)
	if err != nil {
		if logger != nil {
			logger.Printf("invalid key expression: %v", err)
		}
		return
	}
	t.set(cond, action)
}

// SetCondition registers a pre-parsed condition directly, used by the
// engine when constructing default-modifier bindings.
func (t *Table) SetCondition(cond keyexpr.KeyCondition, action Action) {
	t.set(cond, action)
}

func (t *Table) set(cond keyexpr.KeyCondition, action Action) {
	key := bucketKey(cond)
	for _, idx := range t.buckets[key] {
		if !t.entries[idx].deleted && t.entries[idx].cond.Equal(cond) {
			t.entries[idx].action = action
			return
		}
	}
	t.entries = append(t.entries, entry{cond: cond, action: action})
	t.buckets[key] = append(t.buckets[key], len(t.entries)-1)
}

// Get looks up the action bound to cond, if any.
func (t *Table) Get(cond keyexpr.KeyCondition) (Action, bool) {
	for _, idx := range t.buckets[bucketKey(cond)] {
		e := t.entries[idx]
		if !e.deleted && e.cond.Equal(cond) {
			return e.action, true
		}
	}
	return Action{}, false
}

// Delete removes the binding for expr, if present. An invalid expression
// is logged and treated as a miss.
func (t *Table) Delete(tables *keyexpr.Tables, expr string, logger *log.Logger) {
	cond, err := tables.Parse(expr)
	if err != nil {
		if logger != nil {
			logger.Printf("invalid key expression: %v", err)
		}
		return
	}
	for _, idx := range t.buckets[bucketKey(cond)] {
		if !t.entries[idx].deleted && t.entries[idx].cond.Equal(cond) {
			t.entries[idx].deleted = true
			return
		}
	}
}

// Entries iterates the table in insertion order, yielding each condition
// and its action. Used by the engine to merge tables into a unified map.
func (t *Table) Entries(yield func(keyexpr.KeyCondition, Action) bool) {
	for _, e := range t.entries {
		if e.deleted {
			continue
		}
		if !yield(e.cond, e.action) {
			return
		}
	}
}
