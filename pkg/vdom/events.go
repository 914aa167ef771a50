package vdom

// OnClick handles click events.
func OnClick(handler any) EventHandler {
	return EventHandler{Event: "onclick", Handler: handler}
}
