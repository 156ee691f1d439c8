// Package binding resolves function literals and type declarations against
// type-checker output and formats the resolved handles for display.
package binding

import (
	"fmt"
	"go/ast"
	"go/types"
	"strconv"
	"strings"
)

// Method is the resolved handle of a function literal: its signature plus
// the name the gc toolchain assigns to the compiled closure.
type Method struct {
	Sig *types.Signature
	// Name is relative to the enclosing declaration, e.g. "M.func1", "F.func2.1"
	// or "init.func1" for closures outside any function body.
	Name string
	// Receiver is the receiver part of the enclosing method, e.g. "(*T)" or "T".
	// It is empty for plain functions.
	Receiver string
	// PkgPath is the import path of the package that declares the literal.
	PkgPath string
}

// Symbol returns the full symbol name of the closure as it appears in
// binaries and stack traces, e.g. "example.com/p.(*T).M.func1".
func (m *Method) Symbol() string {
	if m == nil {
		return ""
	}
	name := MethodName(m, false)
	if m.PkgPath == "" {
		return name
	}
	return m.PkgPath + "." + name
}

// Resolver answers semantic questions about nodes of one type-checked file.
// A zero Resolver resolves nothing.
type Resolver struct {
	Info *types.Info
	Pkg  *types.Package
}

// MethodBinding resolves the function literal lit. ancestors is the parent
// chain of lit, outermost first. It returns nil when lit has no recorded
// signature.
func (r Resolver) MethodBinding(lit *ast.FuncLit, ancestors []ast.Node) *Method {
	if r.Info == nil || lit == nil {
		return nil
	}
	sig, ok := r.Info.TypeOf(lit).(*types.Signature)
	if !ok {
		return nil
	}

	m := &Method{Sig: sig}
	if r.Pkg != nil {
		m.PkgPath = r.Pkg.Path()
	}
	m.Name, m.Receiver = closureName(lit, ancestors)
	return m
}

// TypeBinding resolves the type declared or extended by decl. decl must be
// a method declaration or a type spec; anything else yields nil.
func (r Resolver) TypeBinding(decl ast.Node) *types.TypeName {
	if r.Info == nil {
		return nil
	}

	switch d := decl.(type) {
	case *ast.TypeSpec:
		tn, _ := r.Info.Defs[d.Name].(*types.TypeName)
		return tn
	case *ast.FuncDecl:
		if d.Recv == nil {
			return nil
		}
		fn, ok := r.Info.Defs[d.Name].(*types.Func)
		if !ok {
			return nil
		}
		recv := fn.Type().(*types.Signature).Recv()
		if recv == nil {
			return nil
		}
		t := recv.Type()
		if ptr, ok := t.(*types.Pointer); ok {
			t = ptr.Elem()
		}
		if named, ok := t.(*types.Named); ok {
			return named.Obj()
		}
	}
	return nil
}

// IsTypeDecl reports whether n declares or extends a named type, which makes
// it the owner of any closure found beneath it.
func IsTypeDecl(n ast.Node) bool {
	switch d := n.(type) {
	case *ast.TypeSpec:
		return true
	case *ast.FuncDecl:
		return d.Recv != nil && len(d.Recv.List) > 0
	}
	return false
}

// BinaryName returns the package-qualified name of tn, e.g. "example.com/p.T".
func BinaryName(tn *types.TypeName) string {
	if tn == nil {
		return ""
	}
	if tn.Pkg() == nil {
		return tn.Name()
	}
	return tn.Pkg().Path() + "." + tn.Name()
}

// MethodName returns the display name of m. With preferSimpleName the name
// is relative to the enclosing declaration ("M.func1"); otherwise the
// receiver is prepended when there is one ("(*T).M.func1").
func MethodName(m *Method, preferSimpleName bool) string {
	if m == nil {
		return ""
	}
	if preferSimpleName || m.Receiver == "" {
		return m.Name
	}
	return m.Receiver + "." + m.Name
}

// FormatSignature renders m as name followed by its parameters and results,
// e.g. "F.func1(i int) int". Package qualifiers are dropped for the
// declaring package.
func FormatSignature(m *Method, name string) string {
	if m == nil || m.Sig == nil {
		return ""
	}
	qualifier := func(p *types.Package) string {
		if p.Path() == m.PkgPath {
			return ""
		}
		return p.Name()
	}
	sig := types.TypeString(m.Sig, qualifier)
	return name + strings.TrimPrefix(sig, "func")
}

// closureName computes the gc name of lit relative to its enclosing
// declaration, together with the receiver of that declaration.
func closureName(lit *ast.FuncLit, ancestors []ast.Node) (name, receiver string) {
	for i := len(ancestors) - 1; i >= 0; i-- {
		switch fn := ancestors[i].(type) {
		case *ast.FuncLit:
			parent, recv := closureName(fn, ancestors[:i])
			return parent + "." + strconv.Itoa(closureIndex(fn.Body, lit)), recv
		case *ast.FuncDecl:
			return declName(fn, ancestors[:i]) + ".func" + strconv.Itoa(closureIndex(fn.Body, lit)), receiverString(fn)
		}
	}

	var scope ast.Node = lit
	if len(ancestors) > 0 {
		scope = ancestors[0]
	}
	return "init.func" + strconv.Itoa(closureIndex(scope, lit)), ""
}

// declName returns the name gc gives the function declared by fn. Init
// functions are numbered "init.0", "init.1", ... in source order among the
// init functions of the file.
func declName(fn *ast.FuncDecl, ancestors []ast.Node) string {
	if fn.Recv != nil || fn.Name.Name != "init" || len(ancestors) == 0 {
		return fn.Name.Name
	}
	file, ok := ancestors[0].(*ast.File)
	if !ok {
		return fn.Name.Name
	}

	k := 0
	for _, decl := range file.Decls {
		if decl == fn {
			break
		}
		if d, ok := decl.(*ast.FuncDecl); ok && d.Recv == nil && d.Name.Name == "init" {
			k++
		}
	}
	return "init." + strconv.Itoa(k)
}

// closureIndex returns the 1-based position of lit among the closures
// directly owned by scope, in source order. Closures nested in other
// closures or in function declarations are not counted.
func closureIndex(scope ast.Node, lit *ast.FuncLit) int {
	if scope == nil || scope == lit {
		return 1
	}

	idx, found := 0, false
	ast.Inspect(scope, func(n ast.Node) bool {
		if found {
			return false
		}
		switch n := n.(type) {
		case *ast.FuncDecl:
			return false
		case *ast.FuncLit:
			idx++
			found = n == lit
			return false
		}
		return true
	})
	if !found {
		return 1
	}
	return idx
}

// receiverString renders the receiver of fn as it appears in symbol names.
func receiverString(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return ""
	}
	return recvExpr(fn.Recv.List[0].Type)
}

func recvExpr(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return "(*" + recvExpr(t.X) + ")"
	case *ast.ParenExpr:
		return recvExpr(t.X)
	case *ast.Ident:
		return t.Name
	case *ast.IndexExpr:
		return recvExpr(t.X) + "[...]"
	case *ast.IndexListExpr:
		return recvExpr(t.X) + "[...]"
	default:
		return fmt.Sprintf("%T", expr)
	}
}
