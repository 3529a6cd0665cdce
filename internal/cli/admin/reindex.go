package admin

import (
	"fmt"
	"log"

	"github.com/novanote/novanote/internal/config"
	"github.com/spf13/cobra"
)

// ReindexCmd rebuilds the vector index from the stored item text, for
// example after changing the embedding model or the vector backend.
func ReindexCmd() *cobra.Command {
	var (
		collectionID string
		all          bool
	)

	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild vectors for one or all collections",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (collectionID == "") == !all {
				return fmt.Errorf("exactly one of --collection or --all is required")
			}
			ctx := cmd.Context()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			ids := []string{collectionID}
			if all {
				ids, err = a.collections.ListIDs(ctx)
				if err != nil {
					return fmt.Errorf("failed to list collections: %w", err)
				}
			}

			total := 0
			for _, id := range ids {
				n, err := a.itemSvc.ReindexCollection(ctx, id)
				if err != nil {
					return fmt.Errorf("reindex collection %s: %w", id, err)
				}
				log.Printf("reindex: collection %s: %d items indexed", id, n)
				total += n
			}
			fmt.Printf("Reindexed %d items across %d collections\n", total, len(ids))
			return nil
		},
	}

	cmd.Flags().StringVarP(&collectionID, "collection", "c", "", "Collection ID to reindex")
	cmd.Flags().BoolVar(&all, "all", false, "Reindex every collection")

	return cmd
}
