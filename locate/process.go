package locate

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	tt "github.com/gnolang/lambdaloc/internal/types"
)

var skippedDirs = map[string]bool{
	"vendor":       true,
	".git":         true,
	"testdata":     true,
	"node_modules": true,
}

// ProcessPaths lists the lambda locations of every Go file under paths.
// Directories are walked recursively and processed concurrently; progress
// is drawn on progress when it is not nil. Files that fail to load are
// logged and skipped.
func ProcessPaths(ctx context.Context, logger *zap.Logger, engine LocateEngine, paths []string, progress io.Writer) ([]tt.Location, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var files []string
	for _, path := range paths {
		found, err := collectFiles(path)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}

	if progress == nil {
		progress = io.Discard
	}
	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("scanning"),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		all  []tt.Location
		sem  = make(chan struct{}, runtime.NumCPU())
		done = ctx.Done()
	)

loop:
	for _, file := range files {
		select {
		case <-done:
			break loop
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(fp string) {
			defer wg.Done()
			defer func() { <-sem }()

			locs, err := engine.Locations(ctx, fp)
			if err != nil {
				logger.Error("Error processing file", zap.String("file", fp), zap.Error(err))
			} else {
				mu.Lock()
				all = append(all, locs...)
				mu.Unlock()
			}
			_ = bar.Add(1)
		}(file)
	}
	wg.Wait()
	_ = bar.Finish()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return all, nil
}

func collectFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}
	if !info.IsDir() {
		if !isGoFile(path) {
			return nil, nil
		}
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != path && skippedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if isGoFile(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory %s: %w", path, err)
	}
	return files, nil
}

func isGoFile(path string) bool {
	return strings.HasSuffix(path, ".go")
}
