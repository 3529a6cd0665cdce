package admin

import (
	"fmt"
	"os"

	"github.com/novanote/novanote/internal/cli"
	"github.com/novanote/novanote/internal/service"
	"github.com/spf13/cobra"
)

func APIKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage API keys",
		Long:  "Create, list, and revoke API keys",
	}

	cmd.AddCommand(apiKeyCreateCmd())
	cmd.AddCommand(apiKeyListCmd())
	cmd.AddCommand(apiKeyRevokeCmd())

	return cmd
}

func apiKeyCreateCmd() *cobra.Command {
	var userRef, name, output string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new API key",
		Long:  "Create a new API key for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withAuth(ctx, func(auth *service.AuthService) error {
				user, err := resolveUser(ctx, auth, userRef)
				if err != nil {
					return err
				}

				token, err := auth.CreateAPIKey(ctx, user.ID, name)
				if err != nil {
					return fmt.Errorf("failed to create API key: %w", err)
				}
				key, err := auth.GetAPIKeyByToken(ctx, token)
				if err != nil {
					return fmt.Errorf("failed to retrieve created key: %w", err)
				}

				if output == "json" {
					return cli.WriteJSON(os.Stdout, map[string]interface{}{
						"id":      key.ID,
						"name":    key.Name,
						"user_id": user.ID,
						"token":   token,
					})
				}

				fmt.Printf("API key created for user %s\n", user.Username)
				fmt.Printf("Key ID: %s\n", key.ID)
				fmt.Printf("Key Name: %s\n", key.Name)
				fmt.Printf("Token: %s\n", token)
				fmt.Println("\nSave this token now. You won't be able to see it again!")
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&userRef, "user", "u", "", "User ID or username (required)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "API key name (required)")
	cmd.Flags().StringVar(&output, "output", "text", "Output format (text or json)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func apiKeyListCmd() *cobra.Command {
	var userRef, output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List API keys of a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withAuth(ctx, func(auth *service.AuthService) error {
				user, err := resolveUser(ctx, auth, userRef)
				if err != nil {
					return err
				}
				keys, err := auth.ListAPIKeys(ctx, user.ID)
				if err != nil {
					return fmt.Errorf("failed to list API keys: %w", err)
				}

				if output == "json" {
					data := make([]map[string]interface{}, len(keys))
					for i, key := range keys {
						data[i] = map[string]interface{}{
							"id":         key.ID,
							"name":       key.Name,
							"user_id":    key.UserID,
							"created_at": key.CreatedAt,
							"revoked_at": key.RevokedAt,
							"revoked":    key.IsRevoked(),
						}
					}
					return cli.WriteJSON(os.Stdout, data)
				}

				if len(keys) == 0 {
					fmt.Printf("No API keys found for user %s\n", user.Username)
					return nil
				}
				fmt.Printf("API keys for user %s:\n", user.Username)
				for _, key := range keys {
					status := "active"
					if key.IsRevoked() {
						status = "revoked"
					}
					fmt.Printf("  %s: %s (%s, created: %s)\n", key.ID, key.Name, status, key.CreatedAt.Format("2006-01-02 15:04:05"))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&userRef, "user", "u", "", "User ID or username (required)")
	cmd.Flags().StringVar(&output, "output", "text", "Output format (text or json)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func apiKeyRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <id>",
		Short: "Revoke an API key",
		Long:  "Revoke an API key by its ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withAuth(ctx, func(auth *service.AuthService) error {
				if err := auth.RevokeAPIKey(ctx, args[0]); err != nil {
					return fmt.Errorf("failed to revoke API key: %w", err)
				}
				fmt.Printf("API key %s revoked successfully\n", args[0])
				return nil
			})
		},
	}
}
