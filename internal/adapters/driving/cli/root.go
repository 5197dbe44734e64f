// Package cli implements the command line interface. Commands hold their
// wiring in package-level service variables so tests can substitute fakes.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/graphrag/internal/core/ports/driving"
	"github.com/custodia-labs/graphrag/internal/logger"
)

var (
	verbose    bool
	configPath string

	// Services wired at startup. Nil until Wire or a test sets them.
	indexerService   driving.DocumentIndexer
	retrieverService driving.ContentRetriever
)

var rootCmd = &cobra.Command{
	Use:   "graphrag",
	Short: "Hierarchical document indexing and retrieval over Neo4j",
	Long: `graphrag indexes documents as parent and child nodes in a Neo4j graph
and retrieves parent context through child-level vector search.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ~/.graphrag/config.toml)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
