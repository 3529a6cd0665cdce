package client

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

func ItemsCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "items",
		Short: "List and manage the items of a collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			collectionID, err := collectionFlag(cmd)
			if err != nil {
				return err
			}
			c, err := NewAPIClientFromCmd(cmd)
			if err != nil {
				return err
			}

			q := url.Values{}
			q.Set("limit", strconv.Itoa(limit))
			if cursor != "" {
				q.Set("cursor", cursor)
			}
			var page ItemPage
			if err := c.Get(cmd.Context(), pathf("/v1/collections/%s/items", collectionID)+"?"+q.Encode(), &page); err != nil {
				return err
			}

			if jsonOutput(cmd) {
				return printJSON(cmd, page)
			}
			if len(page.Items) == 0 {
				printf(cmd, "No items found\n")
				return nil
			}
			for _, item := range page.Items {
				printf(cmd, "%s  %-4s %-8s %s\n", item.ID, item.Type, item.IndexStatus, item.Title)
			}
			if page.HasMore && page.NextCursor != "" {
				printf(cmd, "\nMore results available. Use --cursor %s\n", page.NextCursor)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringP("collection", "c", "", "Collection ID (defaults to 'collections use')")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	cmd.AddCommand(itemShowCmd())
	cmd.AddCommand(itemDeleteCmd())
	cmd.AddCommand(itemReindexCmd())
	cmd.AddCommand(itemDownloadCmd())

	return cmd
}

func itemShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show an item with its text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := NewAPIClientFromCmd(cmd)
			if err != nil {
				return err
			}
			var item Item
			if err := c.Get(cmd.Context(), pathf("/v1/items/%s", args[0]), &item); err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return printJSON(cmd, item)
			}

			printf(cmd, "%s (%s)\n", item.Title, item.Type)
			if item.URL != nil {
				printf(cmd, "URL: %s\n", *item.URL)
			}
			printf(cmd, "Index: %s, %d chunks\n", item.IndexStatus, item.ChunkCount)
			if item.IndexError != "" {
				printf(cmd, "Index error: %s\n", item.IndexError)
			}
			printf(cmd, "\n%s\n", item.Content)
			return nil
		},
	}
}

func itemDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an item and its vectors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := NewAPIClientFromCmd(cmd)
			if err != nil {
				return err
			}
			if err := c.Delete(cmd.Context(), pathf("/v1/items/%s", args[0])); err != nil {
				return err
			}
			printf(cmd, "Item %s deleted\n", args[0])
			return nil
		},
	}
}

func itemReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex <id>",
		Short: "Index an item again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := NewAPIClientFromCmd(cmd)
			if err != nil {
				return err
			}
			var item Item
			if err := c.Post(cmd.Context(), pathf("/v1/items/%s/index", args[0]), nil, &item); err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return printJSON(cmd, item)
			}
			printf(cmd, "Item %s: %s, %d chunks\n", item.ID, item.IndexStatus, item.ChunkCount)
			return nil
		},
	}
}

func itemDownloadCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Download the stored PDF of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := NewAPIClientFromCmd(cmd)
			if err != nil {
				return err
			}
			var resp struct {
				DownloadURL string `json:"download_url"`
			}
			if err := c.Get(cmd.Context(), pathf("/v1/items/%s/file", args[0]), &resp); err != nil {
				return err
			}
			if output == "" {
				printf(cmd, "%s\n", resp.DownloadURL)
				return nil
			}
			if err := c.download(cmd, resp.DownloadURL, output); err != nil {
				return err
			}
			printf(cmd, "Saved to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the file here instead of printing the URL")

	return cmd
}

// download fetches a presigned URL without the API key.
func (c *APIClient) download(cmd *cobra.Command, rawURL, path string) error {
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
