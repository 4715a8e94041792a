package focus

import (
	"strings"
	"testing"

	"github.com/keymapd/keyhac/internal/ports"
)

type fakeElm struct {
	role, title string
	parent      *fakeElm
}

func (e *fakeElm) AttributeValue(name string) (string, bool) {
	switch name {
	case "AXRole":
		return e.role, true
	case "AXTitle":
		return e.title, true
	}
	return "", false
}

func (e *fakeElm) Parent() (ports.UIElement, bool) {
	if e.parent == nil {
		return nil, false
	}
	return e.parent, true
}

func TestPathSubstitutesSpecialChars(t *testing.T) {
	root := &fakeElm{role: "AXApplication", title: "App/With(Special)Chars"}
	leaf := &fakeElm{role: "AXButton", title: "tab\tand\nnewline", parent: root}

	path := Path(leaf)
	// "(" and ")" delimit each segment's title, so they may appear only
	// there; the exact path below shows the ones from the title were
	// substituted.
	for _, c := range []string{"*", "?", "[", "]", ":", "\n", "\t"} {
		if strings.Contains(path, c) {
			t.Errorf("Path() = %q still contains special char %q", path, c)
		}
	}
	if want := "/AXApplication(App-With<Special>Chars)/AXButton(tab and newline)"; path != want {
		t.Errorf("Path() = %q, want %q", path, want)
	}
	if !strings.HasPrefix(path, "/AXApplication(") {
		t.Errorf("Path() = %q, want root-first with leading /AXApplication(", path)
	}
}

func TestConditionCheckPattern(t *testing.T) {
	c := Condition{PathPattern: "/AXApplication(Xcode)/*"}
	if !c.Check("/AXApplication(Xcode)/AXWindow()", nil) {
		t.Error("expected pattern to match nested path")
	}
	if c.Check("/AXApplication(Finder)/AXWindow()", nil) {
		t.Error("expected pattern not to match different app")
	}
}

func TestConditionCheckWildcardMatchesAnyDepth(t *testing.T) {
	c := Condition{PathPattern: "*"}
	if !c.Check("/AXApplication(Xcode)/AXWindow()/AXButton()", nil) {
		t.Error("* pattern must match paths with multiple segments")
	}
}

func TestConditionPredicatePanicTreatedAsFalse(t *testing.T) {
	c := Condition{Predicate: func(elm ports.UIElement) bool { panic("boom") }}
	elm := &fakeElm{role: "AXButton"}
	if c.Check("", elm) {
		t.Error("panicking predicate should make Check return false")
	}
}

func TestConditionEmptyMatchesEverything(t *testing.T) {
	var c Condition
	if !c.Check("/anything", nil) {
		t.Error("empty condition should match everything")
	}
}
