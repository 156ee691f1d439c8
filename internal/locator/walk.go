package locator

import "go/ast"

// Action tells Walk how to proceed after visiting a node.
type Action int

const (
	// Continue descends into the children of the visited node.
	Continue Action = iota
	// SkipChildren moves on to the next sibling without descending.
	SkipChildren
	// Stop ends the traversal; visit is not called again.
	Stop
)

// stopWalk unwinds ast.Inspect once visit returns Stop.
type stopWalk struct{}

// Walk traverses root in depth-first pre-order (document order). visit
// receives each node with its ancestor chain, outermost first. The chain
// is reused between calls and must be copied if retained.
func Walk(root ast.Node, visit func(n ast.Node, ancestors []ast.Node) Action) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(stopWalk); !ok {
				panic(r)
			}
		}
	}()

	var stack []ast.Node
	ast.Inspect(root, func(n ast.Node) bool {
		if n == nil {
			stack = stack[:len(stack)-1]
			return false
		}

		switch visit(n, stack) {
		case Stop:
			panic(stopWalk{})
		case SkipChildren:
			return false
		default:
			stack = append(stack, n)
			return true
		}
	})
}
