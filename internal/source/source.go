// Package source loads Go files into type-checked units and converts
// human-facing (line, column) coordinates into byte offsets.
package source

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"path/filepath"

	"golang.org/x/tools/go/ast/astutil"
	"golang.org/x/tools/go/packages"

	"github.com/gnolang/lambdaloc/internal/binding"
)

// ErrInvalidPosition is returned when a (line, column) pair does not denote
// a position inside the file.
var ErrInvalidPosition = errors.New("invalid position")

// Unit is one parsed and type-checked Go file.
type Unit struct {
	binding.Resolver

	Filename string
	Fset     *token.FileSet
	File     *ast.File
	Tok      *token.File

	// TypeErrors holds the errors reported by the type checker. They do not
	// prevent lookups; unresolved nodes simply have no binding.
	TypeErrors []error
}

// ParseFile parses filename and type-checks it on its own. When content is
// nil the file is read from disk.
func ParseFile(filename string, content []byte) (*Unit, error) {
	fset := token.NewFileSet()
	var src any
	if content != nil {
		src = content
	}
	f, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", filename, err)
	}

	u := &Unit{
		Filename: filename,
		Fset:     fset,
		File:     f,
		Tok:      fset.File(f.Pos()),
	}
	info := newInfo()
	conf := types.Config{
		Importer: importer.Default(),
		Error:    func(err error) { u.TypeErrors = append(u.TypeErrors, err) },
	}
	// type errors are collected above; a partial result is still useful.
	pkg, _ := conf.Check(f.Name.Name, fset, []*ast.File{f}, info)
	u.Resolver = binding.Resolver{Info: info, Pkg: pkg}

	return u, nil
}

// LoadFile type-checks the whole package containing filename and returns
// the unit for that file.
func LoadFile(ctx context.Context, filename string, buildFlags []string) (*Unit, error) {
	abs, err := filepath.Abs(filename)
	if err != nil {
		return nil, err
	}

	cfg := &packages.Config{
		Context:    ctx,
		Mode:       packages.NeedName | packages.NeedFiles | packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo | packages.NeedImports | packages.NeedDeps,
		Dir:        filepath.Dir(abs),
		BuildFlags: buildFlags,
		Tests:      true,
	}
	pkgs, err := packages.Load(cfg, "file="+abs)
	if err != nil {
		return nil, fmt.Errorf("error loading package of %s: %w", filename, err)
	}

	for _, pkg := range pkgs {
		for i, name := range pkg.CompiledGoFiles {
			if name != abs || i >= len(pkg.Syntax) {
				continue
			}
			f := pkg.Syntax[i]
			u := &Unit{
				Resolver: binding.Resolver{Info: pkg.TypesInfo, Pkg: pkg.Types},
				Filename: filename,
				Fset:     pkg.Fset,
				File:     f,
				Tok:      pkg.Fset.File(f.Pos()),
			}
			for _, e := range pkg.Errors {
				u.TypeErrors = append(u.TypeErrors, e)
			}
			return u, nil
		}
	}
	return nil, fmt.Errorf("file %s not found in any loaded package", filename)
}

func newInfo() *types.Info {
	return &types.Info{
		Types: make(map[ast.Expr]types.TypeAndValue),
		Defs:  make(map[*ast.Ident]types.Object),
		Uses:  make(map[*ast.Ident]types.Object),
	}
}

// Offset converts a 1-based line and 1-based byte column into a zero-based
// byte offset. A column may point at the line terminator but not past it.
func (u *Unit) Offset(line, column int) (int, error) {
	if line < 1 || line > u.Tok.LineCount() {
		return 0, fmt.Errorf("%w: line %d outside 1..%d", ErrInvalidPosition, line, u.Tok.LineCount())
	}
	if column < 1 {
		return 0, fmt.Errorf("%w: column %d", ErrInvalidPosition, column)
	}

	start := u.Tok.Offset(u.Tok.LineStart(line))
	end := u.Tok.Size()
	if line < u.Tok.LineCount() {
		end = u.Tok.Offset(u.Tok.LineStart(line+1)) - 1
	}
	off := start + column - 1
	if off > end {
		return 0, fmt.Errorf("%w: column %d past end of line %d", ErrInvalidPosition, column, line)
	}
	return off, nil
}

// StartOffset returns the byte offset of the first character of n.
func (u *Unit) StartOffset(n ast.Node) int {
	return u.Tok.Offset(n.Pos())
}

// Position converts a node position into a file position. //line
// directives are ignored so the result always addresses the raw text.
func (u *Unit) Position(p token.Pos) token.Position {
	return u.Fset.PositionFor(p, false)
}

// Describe names the innermost node that encloses (line, column), e.g.
// "identifier" or "function call (or conversion)".
func (u *Unit) Describe(line, column int) (string, error) {
	off, err := u.Offset(line, column)
	if err != nil {
		return "", err
	}
	pos := u.Tok.Pos(off)
	path, _ := astutil.PathEnclosingInterval(u.File, pos, pos)
	if len(path) == 0 {
		return "", nil
	}
	return astutil.NodeDescription(path[0]), nil
}

// FuncLits returns every function literal of the file in document order.
func (u *Unit) FuncLits() []*ast.FuncLit {
	var lits []*ast.FuncLit
	ast.Inspect(u.File, func(n ast.Node) bool {
		if lit, ok := n.(*ast.FuncLit); ok {
			lits = append(lits, lit)
		}
		return true
	})
	return lits
}
