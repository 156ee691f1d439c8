package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/lambdaloc/formatter"
	tt "github.com/gnolang/lambdaloc/internal/types"
	"github.com/gnolang/lambdaloc/locate"
)

var (
	listJsonOutput bool
	outPath        string
)

var listCmd = &cobra.Command{
	Use:   "list [paths...]",
	Short: "List every position where an inline breakpoint can be set",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(executeList(args, os.Stdout, os.Stderr))
	},
}

func executeList(paths []string, w, progress io.Writer) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	engine, err := newEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	return runList(ctx, logger, engine, paths, listJsonOutput, outPath, w, progress)
}

func init() {
	listCmd.Flags().BoolVar(&listJsonOutput, "json", false, "Output locations in JSON format")
	listCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
}

func runList(ctx context.Context, logger *zap.Logger, engine locate.LocateEngine, paths []string, isJson bool, jsonOutput string, w, progress io.Writer) error {
	locs, err := locate.ProcessPaths(ctx, logger, engine, paths, progress)
	if err != nil {
		logger.Error("Error processing paths", zap.Error(err))
		return err
	}

	locsByFile := make(map[string][]tt.Location)
	for _, loc := range locs {
		locsByFile[loc.Filename] = append(locsByFile[loc.Filename], loc)
	}

	if isJson {
		d, err := json.Marshal(locsByFile)
		if err != nil {
			return err
		}
		if jsonOutput == "" {
			fmt.Fprintln(w, string(d))
			return nil
		}
		return os.WriteFile(jsonOutput, d, 0o644)
	}

	sortedFiles := make([]string, 0, len(locsByFile))
	for filename := range locsByFile {
		sortedFiles = append(sortedFiles, filename)
	}
	sort.Strings(sortedFiles)

	for _, filename := range sortedFiles {
		code, err := formatter.ReadSourceCode(filename)
		if err != nil {
			logger.Error("Error reading source file", zap.String("file", filename), zap.Error(err))
			continue
		}
		fmt.Fprintln(w, formatter.FormatLocations(locsByFile[filename], code))
	}
	return nil
}
