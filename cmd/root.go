package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/lambdaloc/locate"
)

const version = "0.1.0"

var (
	cfgFile string
	timeout time.Duration
	verbose bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "lambdaloc",
	Short: "lambdaloc - find the Go function literal starting at a cursor position",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", locate.DefaultConfigFile, "Path to the configuration file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Timeout for a command")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(locateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(mcpCmd)
}

func newEngine() (*locate.Engine, error) {
	engine, err := locate.NewFromFile(logger, cfgFile)
	if err != nil {
		logger.Error("Failed to initialize engine", zap.Error(err))
		return nil, err
	}
	return engine, nil
}

// parsePosition accepts either "FILE LINE COLUMN" or "FILE:LINE:COLUMN".
func parsePosition(args []string) (file string, line, column int, err error) {
	if len(args) == 1 {
		parts := strings.Split(args[0], ":")
		if len(parts) < 3 {
			return "", 0, 0, fmt.Errorf("expected FILE:LINE:COLUMN, got %q", args[0])
		}
		n := len(parts)
		args = []string{strings.Join(parts[:n-2], ":"), parts[n-2], parts[n-1]}
	}
	if len(args) != 3 {
		return "", 0, 0, fmt.Errorf("expected FILE LINE COLUMN")
	}

	line, err = strconv.Atoi(args[1])
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid line %q: %w", args[1], err)
	}
	column, err = strconv.Atoi(args[2])
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid column %q: %w", args[2], err)
	}
	return args[0], line, column, nil
}

// errNotFound reports a lookup that ran but matched nothing. It exits
// with status 1 without an error message.
var errNotFound = errors.New("no lambda found")

// exitOnError must only be called once a command's deferred cleanup has run.
func exitOnError(err error) {
	if err == nil {
		return
	}
	if !errors.Is(err, errNotFound) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	os.Exit(1)
}
