// Package locator finds the function literal that starts exactly at a
// cursor position and derives the metadata a debugger needs to place an
// inline breakpoint on it.
//
// Only the first character of a literal (its func keyword) is a valid
// target: a cursor anywhere inside the literal does not match.
package locator

import (
	"errors"
	"fmt"
	"go/ast"
	"go/types"

	"github.com/gnolang/lambdaloc/internal/binding"
	tt "github.com/gnolang/lambdaloc/internal/types"
)

// NoColumn disables column matching; a Locator built with it never matches.
const NoColumn = -1

// ErrAlreadyRun is returned by Run when the Locator was already used.
var ErrAlreadyRun = errors.New("locator already run")

// Tree is the parsed source unit a Locator queries.
type Tree interface {
	// Offset converts a (line, column) pair into a byte offset.
	Offset(line, column int) (int, error)
	// StartOffset returns the byte offset of the first character of n.
	StartOffset(n ast.Node) int
	// MethodBinding resolves a function literal; nil when unresolved.
	MethodBinding(lit *ast.FuncLit, ancestors []ast.Node) *binding.Method
	// TypeBinding resolves a type declaring node; nil when unresolved.
	TypeBinding(decl ast.Node) *types.TypeName
}

// Match is the function literal found by a Locator.
type Match struct {
	Lit    *ast.FuncLit
	Method *binding.Method
	// Ancestors is the parent chain of Lit, outermost first.
	Ancestors []ast.Node
}

// Locator finds the function literal starting at one (line, column) position.
// It is single use: build one per query.
type Locator struct {
	tree   Tree
	line   int
	column int

	ran    bool
	offset int
	hasOff bool
	match  *Match
}

// New returns a Locator for the given position in tree. Positions are not
// validated until a function literal is visited.
func New(tree Tree, line, column int) *Locator {
	return &Locator{tree: tree, line: line, column: column}
}

// Run traverses root looking for the target literal. Conversion errors from
// the tree abort the traversal and are returned.
func (l *Locator) Run(root ast.Node) error {
	if l.ran {
		return ErrAlreadyRun
	}
	l.ran = true

	var err error
	Walk(root, func(n ast.Node, ancestors []ast.Node) Action {
		lit, ok := n.(*ast.FuncLit)
		if !ok {
			return Continue
		}
		var a Action
		a, err = l.visit(lit, ancestors)
		return a
	})
	return err
}

func (l *Locator) visit(lit *ast.FuncLit, ancestors []ast.Node) (Action, error) {
	if l.column <= NoColumn {
		return Continue, nil
	}

	if !l.hasOff {
		off, err := l.tree.Offset(l.line, l.column)
		if err != nil {
			return Stop, fmt.Errorf("error converting %d:%d: %w", l.line, l.column, err)
		}
		l.offset, l.hasOff = off, true
	}

	if l.offset != l.tree.StartOffset(lit) {
		return Continue, nil
	}

	chain := make([]ast.Node, len(ancestors))
	copy(chain, ancestors)
	l.match = &Match{
		Lit:       lit,
		Method:    l.tree.MethodBinding(lit, chain),
		Ancestors: chain,
	}
	return Stop, nil
}

// Found reports whether a function literal starts at the position.
func (l *Locator) Found() bool {
	return l.match != nil
}

// Match returns the located literal, or nil.
func (l *Locator) Match() *Match {
	return l.match
}

// Node returns the located function literal, or nil.
func (l *Locator) Node() *ast.FuncLit {
	if l.match == nil {
		return nil
	}
	return l.match.Lit
}

// MethodName returns the closure name relative to its declaration,
// e.g. "M.func1".
func (l *Locator) MethodName() (string, bool) {
	if l.match == nil || l.match.Method == nil {
		return "", false
	}
	return binding.MethodName(l.match.Method, true), true
}

// MethodSignature returns the closure name followed by its parameters and
// results, e.g. "M.func1(i int) int".
func (l *Locator) MethodSignature() (string, bool) {
	name, ok := l.MethodName()
	if !ok {
		return "", false
	}
	return binding.FormatSignature(l.match.Method, name), true
}

// QualifiedTypeName returns the package-qualified name of the nearest type
// owning the literal: the receiver type of the enclosing method, or the
// enclosing type spec.
func (l *Locator) QualifiedTypeName() (string, bool) {
	if l.match == nil {
		return "", false
	}
	for i := len(l.match.Ancestors) - 1; i >= 0; i-- {
		decl := l.match.Ancestors[i]
		if !binding.IsTypeDecl(decl) {
			continue
		}
		tn := l.tree.TypeBinding(decl)
		if tn == nil {
			return "", false
		}
		return binding.BinaryName(tn), true
	}
	return "", false
}

// Result assembles the query outcome. Positions are left for the caller,
// which owns the file set.
func (l *Locator) Result() tt.Location {
	loc := tt.Location{
		Line:   l.line,
		Column: l.column,
		Found:  l.Found(),
	}
	if !loc.Found {
		return loc
	}
	loc.Method, _ = l.MethodName()
	loc.Signature, _ = l.MethodSignature()
	loc.TypeName, _ = l.QualifiedTypeName()
	loc.Symbol = l.match.Method.Symbol()
	return loc
}
