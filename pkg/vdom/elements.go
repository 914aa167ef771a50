package vdom

// createElement creates a new VNode with the given tag and arguments.
// Arguments can be: nil, *VNode, EventHandler.
func createElement(tag string, args []any) *VNode {
	node := &VNode{
		Kind:     KindElement,
		Tag:      tag,
		Props:    make(Props),
		Children: make([]*VNode, 0),
	}

	for _, arg := range args {
		switch v := arg.(type) {
		case *VNode:
			if v != nil {
				node.Children = append(node.Children, v)
			}
		case EventHandler:
			node.Props[v.Event] = v.Handler
		}
	}

	return node
}

func H1(args ...any) *VNode     { return createElement("h1", args) }
func Button(args ...any) *VNode { return createElement("button", args) }
