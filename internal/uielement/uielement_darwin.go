//go:build darwin

// Package uielement implements ports.UIElementPort per platform: the
// Accessibility (AX) API on Darwin, walking AXParent to build a focus
// path; a stub on Linux, which has no equivalent accessibility tree.
package uielement

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework ApplicationServices -framework AppKit

#include <ApplicationServices/ApplicationServices.h>
#include <stdlib.h>

extern char *axCopyAttributeString(AXUIElementRef elm, const char *attrName);
extern AXUIElementRef axCopyParent(AXUIElementRef elm);
extern AXUIElementRef axSystemWideFocusedElement(void);
extern AXUIElementRef axFrontmostApplicationElement(void);
extern void axRelease(AXUIElementRef elm);
*/
import "C"

import (
	"runtime"
	"unsafe"

	"github.com/keymapd/keyhac/internal/ports"
)

// element wraps a retained AXUIElementRef. It is a borrowed handle:
// internal/focus.Path walks it to build a focus path and never retains
// it past that call, matching ports.UIElement's documented contract.
// A finalizer releases the underlying CF object once the Go value is
// collected, since axSystemWideFocusedElement,
// axFrontmostApplicationElement and axCopyParent each return a retained
// reference.
type element struct {
	ref C.AXUIElementRef
}

func newElement(ref C.AXUIElementRef) *element {
	e := &element{ref: ref}
	runtime.SetFinalizer(e, func(e *element) { C.axRelease(e.ref) })
	return e
}

// AttributeValue satisfies ports.UIElement. Only string-valued
// attributes (AXRole, AXTitle, and similar) are supported; the engine
// only ever reads those through internal/focus.
func (e *element) AttributeValue(name string) (string, bool) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	cstr := C.axCopyAttributeString(e.ref, cname)
	if cstr == nil {
		return "", false
	}
	defer C.free(unsafe.Pointer(cstr))
	return C.GoString(cstr), true
}

// Parent satisfies ports.UIElement.
func (e *element) Parent() (ports.UIElement, bool) {
	parent := C.axCopyParent(e.ref)
	if parent == nil {
		return nil, false
	}
	return newElement(parent), true
}

// Port is the Darwin ports.UIElementPort, backed by the Accessibility API.
// The caller's process needs Accessibility permission granted in System
// Settings for AXUIElementCopyAttributeValue to return anything.
type Port struct{}

// New returns the Darwin UIElementPort.
func New() *Port { return &Port{} }

// FocusedElement satisfies ports.UIElementPort.
func (p *Port) FocusedElement() (ports.UIElement, bool) {
	ref := C.axSystemWideFocusedElement()
	if ref == nil {
		return nil, false
	}
	return newElement(ref), true
}

// FocusedApplication satisfies ports.UIElementPort.
func (p *Port) FocusedApplication() (ports.UIElement, bool) {
	ref := C.axFrontmostApplicationElement()
	if ref == nil {
		return nil, false
	}
	return newElement(ref), true
}
