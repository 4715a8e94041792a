//go:build linux

package uielement

import "testing"

func TestPortFocusedElementAlwaysFalse(t *testing.T) {
	p := New()
	if _, ok := p.FocusedElement(); ok {
		t.Error("expected no focused element on the Linux stub")
	}
}

func TestPortFocusedApplicationAlwaysFalse(t *testing.T) {
	p := New()
	if _, ok := p.FocusedApplication(); ok {
		t.Error("expected no focused application on the Linux stub")
	}
}
