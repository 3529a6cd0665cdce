package client

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func CollectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collections",
		Aliases: []string{"collection", "col"},
		Short:   "List and manage collections",
		RunE:    runCollectionsList,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List collections you own or that are shared",
		RunE:  runCollectionsList,
	})
	cmd.AddCommand(collectionCreateCmd())
	cmd.AddCommand(collectionEditCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show one collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := NewAPIClientFromCmd(cmd)
			if err != nil {
				return err
			}
			var col Collection
			if err := c.Get(cmd.Context(), "/v1/collections/"+url.PathEscape(args[0]), &col); err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return printJSON(cmd, col)
			}
			printCollection(cmd, &col)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a collection with all its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := NewAPIClientFromCmd(cmd)
			if err != nil {
				return err
			}
			if err := c.Delete(cmd.Context(), "/v1/collections/"+url.PathEscape(args[0])); err != nil {
				return err
			}
			printf(cmd, "Collection %s deleted\n", args[0])
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "use <id>",
		Short: "Set the default collection for add, items, and ask",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := NewAPIClientFromCmd(cmd)
			if err != nil {
				return err
			}
			var col Collection
			if err := c.Get(cmd.Context(), "/v1/collections/"+url.PathEscape(args[0]), &col); err != nil {
				return err
			}

			config, err := LoadGlobalConfig()
			if err != nil {
				return err
			}
			if config == nil {
				config = &GlobalConfig{APIKey: c.apiKey, APIURL: c.baseURL}
			}
			config.DefaultCollection = col.ID
			if err := SaveGlobalConfig(config); err != nil {
				return err
			}
			printf(cmd, "Default collection: %s (%s)\n", col.Name, col.ID)
			return nil
		},
	})

	return cmd
}

func collectionCreateCmd() *cobra.Command {
	var (
		description string
		shared      bool
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := NewAPIClientFromCmd(cmd)
			if err != nil {
				return err
			}
			body := map[string]interface{}{
				"name":        args[0],
				"description": description,
				"is_shared":   shared,
			}
			var col Collection
			if err := c.Post(cmd.Context(), "/v1/collections", body, &col); err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return printJSON(cmd, col)
			}
			printf(cmd, "Collection created: %s (%s)\n", col.Name, col.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Collection description")
	cmd.Flags().BoolVar(&shared, "shared", false, "Let every user read and chat with the collection")

	return cmd
}

func collectionEditCmd() *cobra.Command {
	var name, description string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Rename a collection or change its description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]interface{}{}
			if cmd.Flags().Changed("name") {
				body["name"] = name
			}
			if cmd.Flags().Changed("description") {
				body["description"] = description
			}
			if len(body) == 0 {
				return fmt.Errorf("nothing to update: pass --name or --description")
			}

			c, err := NewAPIClientFromCmd(cmd)
			if err != nil {
				return err
			}
			var col Collection
			if err := c.Patch(cmd.Context(), pathf("/v1/collections/%s", args[0]), body, &col); err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return printJSON(cmd, col)
			}
			printf(cmd, "Collection updated: %s (%s)\n", col.Name, col.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New collection name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New collection description")

	return cmd
}

func runCollectionsList(cmd *cobra.Command, args []string) error {
	c, err := NewAPIClientFromCmd(cmd)
	if err != nil {
		return err
	}
	var cols []Collection
	if err := c.Get(cmd.Context(), "/v1/collections", &cols); err != nil {
		return err
	}
	if jsonOutput(cmd) {
		return printJSON(cmd, cols)
	}
	if len(cols) == 0 {
		printf(cmd, "No collections found\n")
		return nil
	}
	for i := range cols {
		printCollection(cmd, &cols[i])
	}
	return nil
}

func printCollection(cmd *cobra.Command, col *Collection) {
	tags := ""
	if col.IsShared {
		tags += " [shared]"
	}
	if !col.IsOwner {
		tags += " [read-only]"
	}
	printf(cmd, "%s  %s%s (created: %s)\n", col.ID, col.Name, tags, formatTime(col.CreatedAt))
	if col.Description != "" {
		printf(cmd, "    %s\n", col.Description)
	}
}

func pathf(format string, args ...string) string {
	escaped := make([]any, len(args))
	for i, a := range args {
		escaped[i] = url.PathEscape(a)
	}
	return fmt.Sprintf(format, escaped...)
}
