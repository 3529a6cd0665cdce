// Package client implements the novanote command line client.
package client

import (
	"fmt"
	"time"

	"github.com/novanote/novanote/internal/cli"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the novanote command tree.
func NewRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "novanote",
		Short: "NovaNote CLI - chat with your notes, links, and PDFs",
		Long: `NovaNote CLI stores text notes, web pages, and PDFs in collections and
answers questions about them with cited sources.

Environment variables:
  NOVANOTE_API_KEY   API key for authentication
  NOVANOTE_API_URL   API base URL (default: http://localhost:8080)`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().Bool("json", false, "Output as JSON")
	root.PersistentFlags().String("api-key", "", "API key for authentication (overrides env and config)")
	root.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(root)

	root.AddCommand(AuthCmd())
	root.AddCommand(CollectionsCmd())
	root.AddCommand(AddCmd())
	root.AddCommand(ItemsCmd())
	root.AddCommand(AskCmd())
	root.AddCommand(LimitsCmd())

	return root
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(cmd *cobra.Command, v any) error {
	return cli.WriteJSON(cmd.OutOrStdout(), v)
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

// collectionFlag resolves --collection, falling back to the default
// collection saved by "collections use".
func collectionFlag(cmd *cobra.Command) (string, error) {
	if id, _ := cmd.Flags().GetString("collection"); id != "" {
		return id, nil
	}
	global, err := LoadGlobalConfig()
	if err != nil {
		return "", err
	}
	if global != nil && global.DefaultCollection != "" {
		return global.DefaultCollection, nil
	}
	return "", fmt.Errorf("no collection given (use --collection or 'novanote collections use <id>')")
}

func formatTime(s string) string {
	t, err := time.Parse("2006-01-02T15:04:05Z", s)
	if err != nil {
		return s
	}
	return t.Local().Format("2006-01-02 15:04")
}
