package vdom

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{
		Kind: KindText,
		Text: content,
	}
}

// Fragment groups children without a wrapper element. Nil children are
// dropped.
func Fragment(children ...*VNode) *VNode {
	node := &VNode{
		Kind:     KindFragment,
		Children: make([]*VNode, 0, len(children)),
	}
	for _, child := range children {
		if child != nil {
			node.Children = append(node.Children, child)
		}
	}
	return node
}

// Walk calls fn for every node in the tree in document order.
func Walk(node *VNode, fn func(*VNode)) {
	if node == nil {
		return
	}
	fn(node)
	for _, child := range node.Children {
		Walk(child, fn)
	}
}

// FindAll returns every element node with the given tag.
func FindAll(node *VNode, tag string) []*VNode {
	var out []*VNode
	Walk(node, func(n *VNode) {
		if n.Kind == KindElement && n.Tag == tag {
			out = append(out, n)
		}
	})
	return out
}

// TextContent concatenates the text of all descendant text nodes.
func TextContent(node *VNode) string {
	var s string
	Walk(node, func(n *VNode) {
		if n.Kind == KindText {
			s += n.Text
		}
	})
	return s
}
