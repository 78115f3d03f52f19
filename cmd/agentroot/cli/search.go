package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	agentroot "github.com/epappas/agentroot-go"
)

func newSearchCmd() *cobra.Command {
	var limit int
	var smart bool
	var session string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search every indexed collection",
		Long: `Search runs the hybrid (BM25 + semantic) pipeline over every
indexed collection. Pass --smart to let an attached workflow planner choose
the retrieval strategy instead (falls back to the same hybrid pipeline when
no planner is attached).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			params := agentroot.SearchParams{Limit: limit, SessionID: session}
			var resp agentroot.SearchResponse
			if smart {
				resp, err = app.SmartSearch(cmd.Context(), query, params)
			} else {
				resp, err = app.Search(cmd.Context(), query, params)
			}
			if err != nil {
				return err
			}

			return printResults(cmd, resp)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of results")
	cmd.Flags().BoolVar(&smart, "smart", false, "Use the workflow-planner strategy selection")
	cmd.Flags().StringVar(&session, "session", "", "Session ID for seen-result demotion across calls")

	return cmd
}

func printResults(cmd *cobra.Command, resp agentroot.SearchResponse) error {
	out := cmd.OutOrStdout()
	if len(resp.Results) == 0 {
		_, err := fmt.Fprintf(out, "no results (strategy: %s)\n", resp.Strategy)
		return err
	}
	for i, r := range resp.Results {
		if _, err := fmt.Fprintf(out, "%d. %s  (score %.3f, %s)\n   %s\n",
			i+1, r.DisplayPath, r.Score, r.Source, r.Snippet); err != nil {
			return err
		}
	}
	// Suggestions are a human-readability aid; a piped/redirected stdout is
	// almost always a script consuming one result per line, so the footer
	// is skipped there rather than requiring callers to filter it out.
	if isatty.IsTerminal(os.Stdout.Fd()) && len(resp.Suggestions.RelatedDirectories) > 0 {
		_, err := fmt.Fprintf(out, "\nrelated directories: %s\n", strings.Join(resp.Suggestions.RelatedDirectories, ", "))
		if err != nil {
			return err
		}
	}
	return nil
}
