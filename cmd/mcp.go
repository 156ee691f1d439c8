package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/lambdaloc/internal/server"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve lookups as MCP tools over stdio",
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(executeMCP())
	},
}

func executeMCP() error {
	engine, err := newEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	s := server.New("lambdaloc", version, engine, logger)
	fmt.Fprintln(os.Stderr, "lambdaloc MCP server starting...")
	if err := s.ServeStdio(); err != nil {
		logger.Error("MCP server error", zap.Error(err))
		return err
	}
	return nil
}
