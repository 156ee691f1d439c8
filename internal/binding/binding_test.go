package binding

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bindingSource = `package shapes

import "strings"

type Shape[T any] struct{ v T }

func (s *Shape[T]) Each(fn func(T)) { fn(s.v) }

func (s *Shape[T]) Visit() {
	s.Each(func(v T) {})
	s.Each(func(v T) {
		_ = func(b *strings.Builder) error { return nil }
	})
}

type Circle struct{}

func (c Circle) Area() func() float64 {
	return func() float64 { return 0 }
}

func Plain() {}

var Init = func() {}
`

type checked struct {
	file     *ast.File
	resolver Resolver
	parents  map[*ast.FuncLit][]ast.Node
	lits     []*ast.FuncLit
}

func check(t *testing.T, src string) checked {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "shapes.go", src, 0)
	require.NoError(t, err)

	info := &types.Info{
		Types: make(map[ast.Expr]types.TypeAndValue),
		Defs:  make(map[*ast.Ident]types.Object),
	}
	conf := types.Config{Importer: importer.Default()}
	pkg, err := conf.Check("example.com/shapes", fset, []*ast.File{f}, info)
	require.NoError(t, err)

	c := checked{
		file:     f,
		resolver: Resolver{Info: info, Pkg: pkg},
		parents:  make(map[*ast.FuncLit][]ast.Node),
	}
	var stack []ast.Node
	ast.Inspect(f, func(n ast.Node) bool {
		if n == nil {
			stack = stack[:len(stack)-1]
			return false
		}
		if lit, ok := n.(*ast.FuncLit); ok {
			c.parents[lit] = append([]ast.Node(nil), stack...)
			c.lits = append(c.lits, lit)
		}
		stack = append(stack, n)
		return true
	})
	return c
}

func TestMethodBinding(t *testing.T) {
	t.Parallel()
	c := check(t, bindingSource)
	require.Len(t, c.lits, 5)

	tests := []struct {
		name      string
		symbol    string
		signature string
	}{
		{
			name:      "Visit.func1",
			symbol:    "example.com/shapes.(*Shape[...]).Visit.func1",
			signature: "Visit.func1(v T)",
		},
		{
			name:      "Visit.func2",
			symbol:    "example.com/shapes.(*Shape[...]).Visit.func2",
			signature: "Visit.func2(v T)",
		},
		{
			name:      "Visit.func2.1",
			symbol:    "example.com/shapes.(*Shape[...]).Visit.func2.1",
			signature: "Visit.func2.1(b *strings.Builder) error",
		},
		{
			name:      "Area.func1",
			symbol:    "example.com/shapes.Circle.Area.func1",
			signature: "Area.func1() float64",
		},
		{
			name:      "init.func1",
			symbol:    "example.com/shapes.init.func1",
			signature: "init.func1()",
		},
	}

	for i, tt := range tests {
		lit := c.lits[i]
		m := c.resolver.MethodBinding(lit, c.parents[lit])
		require.NotNil(t, m, tt.name)
		assert.Equal(t, tt.name, MethodName(m, true))
		assert.Equal(t, tt.symbol, m.Symbol())
		assert.Equal(t, tt.signature, FormatSignature(m, MethodName(m, true)))
	}
}

const initSource = `package hooks

var Before = func() {}

func init() {
	_ = func() {}
}

func init() {
	_ = func() {
		_ = func() {}
	}
}

var After = func() {}
`

func TestMethodBindingInitFunctions(t *testing.T) {
	t.Parallel()
	c := check(t, initSource)
	require.Len(t, c.lits, 5)

	expected := []string{
		"init.func1",
		"init.0.func1",
		"init.1.func1",
		"init.1.func1.1",
		"init.func2",
	}

	var names []string
	for _, lit := range c.lits {
		m := c.resolver.MethodBinding(lit, c.parents[lit])
		require.NotNil(t, m)
		names = append(names, MethodName(m, true))
	}
	assert.Equal(t, expected, names)

	m := c.resolver.MethodBinding(c.lits[1], c.parents[c.lits[1]])
	assert.Equal(t, "example.com/shapes.init.0.func1", m.Symbol())
}

func TestMethodBindingWithoutInfo(t *testing.T) {
	t.Parallel()
	c := check(t, bindingSource)

	var r Resolver
	lit := c.lits[0]
	m := r.MethodBinding(lit, c.parents[lit])
	assert.Nil(t, m)
	assert.Empty(t, MethodName(m, true))
	assert.Empty(t, FormatSignature(m, "x"))
	assert.Empty(t, m.Symbol())
}

func TestTypeBinding(t *testing.T) {
	t.Parallel()
	c := check(t, bindingSource)

	got := make(map[string]string)
	for _, decl := range c.file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			assert.Equal(t, d.Recv != nil, IsTypeDecl(d), d.Name.Name)
			got[d.Name.Name] = BinaryName(c.resolver.TypeBinding(d))
		case *ast.GenDecl:
			assert.False(t, IsTypeDecl(d))
			for _, spec := range d.Specs {
				if ts, ok := spec.(*ast.TypeSpec); ok {
					assert.True(t, IsTypeDecl(ts))
					got[ts.Name.Name] = BinaryName(c.resolver.TypeBinding(ts))
				}
			}
		}
	}

	assert.Equal(t, map[string]string{
		"Shape":  "example.com/shapes.Shape",
		"Each":   "example.com/shapes.Shape",
		"Visit":  "example.com/shapes.Shape",
		"Circle": "example.com/shapes.Circle",
		"Area":   "example.com/shapes.Circle",
		"Plain":  "",
	}, got)
}

func TestMethodName(t *testing.T) {
	t.Parallel()
	m := &Method{Name: "M.func1", Receiver: "(*T)"}
	assert.Equal(t, "M.func1", MethodName(m, true))
	assert.Equal(t, "(*T).M.func1", MethodName(m, false))

	m.Receiver = ""
	assert.Equal(t, "M.func1", MethodName(m, false))
	assert.Equal(t, "M.func1", m.Symbol())
}
