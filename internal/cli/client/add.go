package client

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func AddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a text note, web page, or PDF to a collection",
	}

	cmd.PersistentFlags().StringP("collection", "c", "", "Collection ID (defaults to 'collections use')")

	cmd.AddCommand(addTextCmd())
	cmd.AddCommand(addLinkCmd())
	cmd.AddCommand(addPDFCmd())

	return cmd
}

func addTextCmd() *cobra.Command {
	var (
		title string
		file  string
	)

	cmd := &cobra.Command{
		Use:   "text [text]",
		Short: "Add a text note",
		Long:  "Add a text note from the argument, from --file, or from stdin when neither is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			collectionID, err := collectionFlag(cmd)
			if err != nil {
				return err
			}
			text, err := readText(cmd, args, file)
			if err != nil {
				return err
			}
			if strings.TrimSpace(text) == "" {
				return fmt.Errorf("text is empty")
			}

			c, err := NewAPIClientFromCmd(cmd)
			if err != nil {
				return err
			}
			var item Item
			body := map[string]string{"title": title, "text": text}
			if err := c.Post(cmd.Context(), pathf("/v1/collections/%s/items/text", collectionID), body, &item); err != nil {
				return err
			}
			return printAdded(cmd, &item)
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Note title (defaults to the first line)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the note from a file")

	return cmd
}

func readText(cmd *cobra.Command, args []string, file string) (string, error) {
	switch {
	case len(args) == 1 && file != "":
		return "", fmt.Errorf("give the text either as an argument or with --file, not both")
	case len(args) == 1:
		return args[0], nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), nil
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
}

func addLinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "link <url>",
		Short: "Fetch a web page and add its text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			collectionID, err := collectionFlag(cmd)
			if err != nil {
				return err
			}
			c, err := NewAPIClientFromCmd(cmd)
			if err != nil {
				return err
			}
			var item Item
			if err := c.Post(cmd.Context(), pathf("/v1/collections/%s/items/link", collectionID), map[string]string{"url": args[0]}, &item); err != nil {
				return err
			}
			return printAdded(cmd, &item)
		},
	}
}

func addPDFCmd() *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "pdf <path>",
		Short: "Upload a PDF and add its text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			collectionID, err := collectionFlag(cmd)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open file: %w", err)
			}
			defer f.Close()

			c, err := NewAPIClientFromCmd(cmd)
			if err != nil {
				return err
			}
			fields := map[string]string{}
			if title != "" {
				fields["title"] = title
			}
			var item Item
			if err := c.PostFile(cmd.Context(), pathf("/v1/collections/%s/items/pdf", collectionID), filepath.Base(args[0]), f, fields, &item); err != nil {
				return err
			}
			return printAdded(cmd, &item)
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Title (defaults to the file name)")

	return cmd
}

func printAdded(cmd *cobra.Command, item *Item) error {
	if jsonOutput(cmd) {
		return printJSON(cmd, item)
	}
	printf(cmd, "Added %s %q (%s)\n", item.Type, item.Title, item.ID)
	switch item.IndexStatus {
	case "indexed":
		printf(cmd, "Indexed %d chunks\n", item.ChunkCount)
	case "pending":
		printf(cmd, "Indexing is queued and will be retried in the background\n")
	default:
		printf(cmd, "Index status: %s\n", item.IndexStatus)
	}
	return nil
}
