package vdom

import "testing"

func TestHIDGenerator(t *testing.T) {
	gen := NewHIDGenerator()
	if got := gen.Next(); got != "h1" {
		t.Errorf("Next() = %q, want h1", got)
	}
	if got := gen.Next(); got != "h2" {
		t.Errorf("Next() = %q, want h2", got)
	}
	gen.Reset()
	if got := gen.Next(); got != "h1" {
		t.Errorf("after reset Next() = %q, want h1", got)
	}
}
