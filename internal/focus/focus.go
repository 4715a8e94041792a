// Package focus builds glob-safe focus-path strings from a chain of UI
// elements and matches them against registered focus conditions.
package focus

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/keymapd/keyhac/internal/ports"
)

// charTrans is the fixed substitution table that makes a Role/Title
// segment safe to glob: every character with special meaning to the
// pattern matcher, plus newline/tab, is replaced with a plain substitute.
var charTrans = strings.NewReplacer(
	"(", "<",
	")", ">",
	"/", "-",
	"*", "-",
	"?", "-",
	"[", "<",
	"]", ">",
	":", "-",
	"\n", " ",
	"\t", " ",
)

// Path walks elm's AXParent chain to the root and builds the canonical
// focus path "/Role(Title)/Role(Title)/…", root-first.
func Path(elm ports.UIElement) string {
	var chain []ports.UIElement
	for elm != nil {
		chain = append(chain, elm)
		parent, ok := elm.Parent()
		if !ok {
			break
		}
		elm = parent
	}

	var b strings.Builder
	for i := len(chain) - 1; i >= 0; i-- {
		role, _ := chain[i].AttributeValue("AXRole")
		title, _ := chain[i].AttributeValue("AXTitle")
		role = charTrans.Replace(role)
		title = charTrans.Replace(title)
		fmt.Fprintf(&b, "/%s(%s)", role, title)
	}
	return b.String()
}

// Predicate is a user-supplied focus test; its exceptions (panics) are
// caught by Condition.Check and treated as false.
type Predicate func(elm ports.UIElement) bool

// Condition is a focus-path glob pattern, a predicate, or both. A nil
// Condition (zero value with no pattern or predicate set) matches
// everything.
type Condition struct {
	PathPattern string
	Predicate   Predicate
}

var (
	globCacheMu sync.RWMutex
	globCache   = map[string]*regexp.Regexp{}
)

// compileGlob translates a shell-style glob (*, ?, [...]) into a regexp
// matched against the whole focus path. Unlike path/filepath.Match, * and
// ? here cross "/" boundaries, since a focus path's segments are not
// filesystem directories and a pattern like "*" must match any path
// regardless of depth. Patterns are compiled once and cached, since the
// same pattern is evaluated on every key event.
func compileGlob(pattern string) *regexp.Regexp {
	globCacheMu.RLock()
	re, ok := globCache[pattern]
	globCacheMu.RUnlock()
	if ok {
		return re
	}

	var b strings.Builder
	b.WriteString("^")
	i := 0
	for i < len(pattern) {
		c := pattern[i]
		switch c {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		case '[':
			j := i + 1
			for j < len(pattern) && pattern[j] != ']' {
				j++
			}
			if j >= len(pattern) {
				// unterminated class: treat '[' as a literal
				b.WriteString(regexp.QuoteMeta("["))
				break
			}
			b.WriteString(pattern[i : j+1])
			i = j
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
		i++
	}
	b.WriteString("$")

	re = regexp.MustCompile(b.String())
	globCacheMu.Lock()
	globCache[pattern] = re
	globCacheMu.Unlock()
	return re
}

// Check reports whether path matches the glob pattern (if set) and the
// predicate returns true for elm (if set). A panicking predicate is
// caught and treated as a false result.
func (c Condition) Check(path string, elm ports.UIElement) (result bool) {
	if c.PathPattern != "" {
		if !compileGlob(c.PathPattern).MatchString(path) {
			return false
		}
	}
	if c.Predicate != nil {
		defer func() {
			if recover() != nil {
				result = false
			}
		}()
		if elm == nil || !c.Predicate(elm) {
			return false
		}
	}
	return true
}
