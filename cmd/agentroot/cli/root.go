// Package cli provides the agentroot CLI's cobra commands: index, search,
// and version. Grounded on the teacher's cmd/amanmcp/cmd package, trimmed to
// the operations the core library actually exposes (no MCP server, no
// daemon, no preflight/profiling harness — those belong to a shell this
// exercise's scope doesn't build).
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/epappas/agentroot-go/pkg/version"
)

var configPath string

// NewRootCmd creates the root command for the agentroot CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "agentroot",
		Short:   "Local-first hybrid search over a collection of files",
		Version: version.Version,
		Long: `agentroot indexes one or more local directories and serves
hybrid (BM25 + semantic) search over them.

Run 'agentroot index add <name> <path>' to register a collection,
'agentroot index reindex <name>' to build its catalog, then
'agentroot search <query>' to search it.`,
		SilenceUsage: true,
	}
	cmd.SetVersionTemplate("agentroot version {{.Version}}\n")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (defaults to built-in defaults)")

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func newVersionCmd() *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(version.GetInfo())
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")
	return cmd
}
