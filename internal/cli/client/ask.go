package client

import (
	"strings"

	"github.com/spf13/cobra"
)

func AskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question about a collection",
		Long:  "Answer a question from the collection's content. Sources are listed by the [n] markers used in the answer.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			collectionID, err := collectionFlag(cmd)
			if err != nil {
				return err
			}
			c, err := NewAPIClientFromCmd(cmd)
			if err != nil {
				return err
			}

			var answer Answer
			body := map[string]string{"question": strings.Join(args, " ")}
			if err := c.Post(cmd.Context(), pathf("/v1/collections/%s/chat", collectionID), body, &answer); err != nil {
				return err
			}

			if jsonOutput(cmd) {
				return printJSON(cmd, answer)
			}
			printf(cmd, "%s\n", answer.Answer)
			if len(answer.References) > 0 {
				printf(cmd, "\nSources:\n")
				for _, ref := range answer.References {
					if ref.URL != nil {
						printf(cmd, "  [%d] %s (%s)\n", ref.Idx, ref.Title, *ref.URL)
					} else {
						printf(cmd, "  [%d] %s\n", ref.Idx, ref.Title)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringP("collection", "c", "", "Collection ID (defaults to 'collections use')")

	return cmd
}
