// Package main provides the clinref CLI entry point.
package main

// @title           Clinref API
// @version         1.0
// @description     Clinical reference assistant API. Guideline summaries, drug monographs and a streamed question answering assistant with resolvable citations.

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Format: "Bearer {token}"

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// configPath is the --config flag shared by subcommands that need settings
var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "clinref",
		Short: "Clinical reference assistant",
		Long: `clinref serves the clinical reference assistant API and offers
offline tools for the reference locator and the citation renderer.

Configuration is read from an optional YAML file (--config or CLINREF_CONFIG),
a .env file and CLINREF_ environment variables.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")

	root.AddCommand(newServeCmd(), newLocateCmd(), newRenderCmd())
	return root
}
