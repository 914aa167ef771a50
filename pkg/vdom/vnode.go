package vdom

import "strings"

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement  VKind = iota // <h1>, <button>
	KindText                  // Plain text node
	KindFragment              // Grouping without wrapper
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	default:
		return "Unknown"
	}
}

// VNode is the virtual DOM node.
type VNode struct {
	Kind     VKind    // Node type
	Tag      string   // Element tag name (e.g., "h1")
	Props    Props    // Event handlers keyed "on<event>"
	Children []*VNode // Child nodes
	Text     string   // For KindText
	HID      string   // Hydration ID (assigned during render)
}

// Props holds event handlers.
type Props map[string]any

// IsInteractive returns true if this node has at least one non-nil event
// handler and needs a HID.
func (v *VNode) IsInteractive() bool {
	if v == nil || v.Kind != KindElement {
		return false
	}
	for key, value := range v.Props {
		if strings.HasPrefix(key, "on") && value != nil {
			return true
		}
	}
	return false
}

// Handlers returns the node's event handlers keyed by event name ("click").
func (v *VNode) Handlers() map[string]any {
	if v == nil || v.Kind != KindElement {
		return nil
	}
	var out map[string]any
	for key, value := range v.Props {
		if !strings.HasPrefix(key, "on") || value == nil {
			continue
		}
		if out == nil {
			out = make(map[string]any)
		}
		out[key[2:]] = value
	}
	return out
}

// EventHandler represents an event handler.
type EventHandler struct {
	Event   string // "onclick"
	Handler any    // Function to call
}
