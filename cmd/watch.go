package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/lambdaloc/formatter"
	tt "github.com/gnolang/lambdaloc/internal/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch FILE LINE COLUMN | FILE:LINE:COLUMN",
	Short: "Re-run a lookup every time the file is saved",
	Args:  cobra.RangeArgs(1, 3),
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(executeWatch(args))
	},
}

func executeWatch(args []string) error {
	file, line, column, err := parsePosition(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	engine, err := newEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	return engine.Watch(ctx, file, line, column, func(loc tt.Location, err error) {
		if err != nil {
			logger.Error("Error locating lambda", zap.String("file", file), zap.Error(err))
			return
		}
		code, err := formatter.ReadSourceCode(file)
		if err != nil {
			logger.Error("Error reading source file", zap.String("file", file), zap.Error(err))
		}
		fmt.Println(formatter.FormatLocation(loc, code))
	})
}
