// Package locate is the entry point for lambda lookups on Go files: it
// loads and caches type-checked files and runs one locator per query.
package locate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/gnolang/lambdaloc/internal/locator"
	"github.com/gnolang/lambdaloc/internal/source"
	tt "github.com/gnolang/lambdaloc/internal/types"
)

// LocateEngine is the query surface shared by the CLI, watch mode and the
// MCP server.
type LocateEngine interface {
	Locate(ctx context.Context, filename string, line, column int) (tt.Location, error)
	Locations(ctx context.Context, filename string) ([]tt.Location, error)
}

var _ LocateEngine = (*Engine)(nil)

// Engine answers lambda lookups.
type Engine struct {
	logger *zap.Logger
	config Config
	units  *unitCache
}

// New creates an engine. A nil logger disables logging.
func New(logger *zap.Logger, config Config) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := config.validate(); err != nil {
		return nil, err
	}

	units, err := newUnitCache(config.CacheMaxCost)
	if err != nil {
		return nil, fmt.Errorf("error creating unit cache: %w", err)
	}

	return &Engine{logger: logger, config: config, units: units}, nil
}

// NewFromFile creates an engine configured from the yaml file at path.
func NewFromFile(logger *zap.Logger, path string) (*Engine, error) {
	config, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return New(logger, config)
}

// Close releases the unit cache.
func (e *Engine) Close() {
	e.units.close()
}

// Invalidate drops the cached unit of filename.
func (e *Engine) Invalidate(filename string) {
	if abs, err := filepath.Abs(filename); err == nil {
		e.units.del(abs)
	}
}

func (e *Engine) unit(ctx context.Context, filename string) (*source.Unit, error) {
	abs, err := filepath.Abs(filename)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", filename, err)
	}

	if u, ok := e.units.get(abs, info); ok {
		e.logger.Debug("unit cache hit", zap.String("file", abs))
		return u, nil
	}

	var u *source.Unit
	switch e.config.Mode {
	case ModePackage:
		u, err = source.LoadFile(ctx, abs, e.config.BuildFlags)
	default:
		u, err = source.ParseFile(abs, nil)
	}
	if err != nil {
		return nil, err
	}
	if len(u.TypeErrors) > 0 {
		e.logger.Debug("type errors while loading",
			zap.String("file", abs),
			zap.Int("count", len(u.TypeErrors)),
			zap.Error(u.TypeErrors[0]),
		)
	}

	e.units.set(abs, info, u)
	return u, nil
}

// Locate finds the function literal starting at (line, column) in filename.
// Line and column are 1-based; a column of -1 never matches. A miss is not
// an error: the returned location has Found unset.
func (e *Engine) Locate(ctx context.Context, filename string, line, column int) (tt.Location, error) {
	u, err := e.unit(ctx, filename)
	if err != nil {
		return tt.Location{}, err
	}

	loc, err := locateIn(u, line, column)
	if err != nil {
		return tt.Location{}, err
	}
	loc.Filename = filename

	e.logger.Debug("located",
		zap.String("file", filename),
		zap.Int("line", line),
		zap.Int("column", column),
		zap.Bool("found", loc.Found),
		zap.String("symbol", loc.Symbol),
	)
	return loc, nil
}

// Locations returns one location per function literal in filename, in
// document order: the positions where an inline breakpoint may be set.
func (e *Engine) Locations(ctx context.Context, filename string) ([]tt.Location, error) {
	u, err := e.unit(ctx, filename)
	if err != nil {
		return nil, err
	}

	lits := u.FuncLits()
	locs := make([]tt.Location, 0, len(lits))
	for _, lit := range lits {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := u.Position(lit.Pos())
		loc, err := locateIn(u, start.Line, start.Column)
		if err != nil {
			return nil, err
		}
		loc.Filename = filename
		locs = append(locs, loc)
	}
	return locs, nil
}

func locateIn(u *source.Unit, line, column int) (tt.Location, error) {
	l := locator.New(u, line, column)
	if err := l.Run(u.File); err != nil {
		return tt.Location{}, err
	}

	loc := l.Result()
	if lit := l.Node(); lit != nil {
		loc.Start = u.Position(lit.Pos())
		loc.End = u.Position(lit.End())
		return loc, nil
	}

	if column > locator.NoColumn {
		desc, err := u.Describe(line, column)
		if err != nil {
			return tt.Location{}, err
		}
		if desc != "" {
			loc.Note = "no function literal starts here (found " + desc + ")"
		}
	}
	return loc, nil
}
