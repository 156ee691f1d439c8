package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/lambdaloc/formatter"
	"github.com/gnolang/lambdaloc/locate"
)

var locateJsonOutput bool

var locateCmd = &cobra.Command{
	Use:   "locate FILE LINE COLUMN | FILE:LINE:COLUMN",
	Short: "Find the function literal starting at a position",
	Long: `Reports the closure name, signature and owning type of the function literal
whose func keyword is at the given 1-based line and byte column.
Example) lambdaloc locate stream.go:14:15`,
	Args: cobra.RangeArgs(1, 3),
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(executeLocate(args, os.Stdout))
	},
}

func executeLocate(args []string, w io.Writer) error {
	file, line, column, err := parsePosition(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	engine, err := newEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	found, err := runLocate(ctx, logger, engine, file, line, column, locateJsonOutput, w)
	if err != nil {
		return err
	}
	if !found {
		return errNotFound
	}
	return nil
}

func init() {
	locateCmd.Flags().BoolVar(&locateJsonOutput, "json", false, "Output the result in JSON format")
}

func runLocate(ctx context.Context, logger *zap.Logger, engine locate.LocateEngine, file string, line, column int, isJson bool, w io.Writer) (bool, error) {
	loc, err := engine.Locate(ctx, file, line, column)
	if err != nil {
		logger.Error("Error locating lambda", zap.String("file", file), zap.Error(err))
		return false, err
	}

	if isJson {
		d, err := json.Marshal(loc)
		if err != nil {
			return false, err
		}
		fmt.Fprintln(w, string(d))
		return loc.Found, nil
	}

	code, err := formatter.ReadSourceCode(file)
	if err != nil {
		logger.Error("Error reading source file", zap.String("file", file), zap.Error(err))
	}
	fmt.Fprint(w, formatter.FormatLocation(loc, code))
	return loc.Found, nil
}
