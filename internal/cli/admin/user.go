package admin

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/novanote/novanote/internal/cli"
	"github.com/novanote/novanote/internal/config"
	"github.com/novanote/novanote/internal/domain"
	"github.com/novanote/novanote/internal/repository"
	"github.com/novanote/novanote/internal/service"
	"github.com/spf13/cobra"
)

// withAuth opens the database and runs fn with an AuthService over it.
func withAuth(ctx context.Context, fn func(auth *service.AuthService) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	pool, err := openPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	auth := service.NewAuthService(
		repository.NewUserRepository(pool),
		repository.NewAPIKeyRepository(pool),
		&service.DefaultUUIDGenerator{},
	)
	return fn(auth)
}

// resolveUser accepts a user ID or a username.
func resolveUser(ctx context.Context, auth *service.AuthService, ref string) (*domain.User, error) {
	if _, err := uuid.Parse(ref); err == nil {
		user, err := auth.GetUser(ctx, ref)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
	}

	user, err := auth.GetUserByUsername(ctx, ref)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("user not found: %s", ref)
	}
	return user, err
}

func UserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
		Long:  "Create users, list them, and change their plan",
	}

	cmd.AddCommand(userCreateCmd())
	cmd.AddCommand(userListCmd())
	cmd.AddCommand(userSetProCmd())

	return cmd
}

func userCreateCmd() *cobra.Command {
	var (
		isPro   bool
		withKey bool
		output  string
	)

	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a new user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withAuth(ctx, func(auth *service.AuthService) error {
				user, err := auth.CreateUser(ctx, args[0], isPro)
				if err != nil {
					return fmt.Errorf("failed to create user: %w", err)
				}

				var token string
				if withKey {
					token, err = auth.CreateAPIKey(ctx, user.ID, "default")
					if err != nil {
						return fmt.Errorf("failed to create API key: %w", err)
					}
				}

				if output == "json" {
					data := map[string]interface{}{
						"id":       user.ID,
						"username": user.Username,
						"is_pro":   user.IsPro,
					}
					if token != "" {
						data["token"] = token
					}
					return cli.WriteJSON(os.Stdout, data)
				}

				fmt.Printf("User created: %s (%s)\n", user.Username, user.ID)
				if token != "" {
					fmt.Printf("Token: %s\n", token)
					fmt.Println("\nSave this token now. You won't be able to see it again!")
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&isPro, "pro", false, "Create the user on the pro plan")
	cmd.Flags().BoolVar(&withKey, "with-key", false, "Also create an API key for the user")
	cmd.Flags().StringVar(&output, "output", "text", "Output format (text or json)")

	return cmd
}

func userListCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all users",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withAuth(ctx, func(auth *service.AuthService) error {
				users, err := auth.ListUsers(ctx)
				if err != nil {
					return fmt.Errorf("failed to list users: %w", err)
				}

				if output == "json" {
					data := make([]map[string]interface{}, len(users))
					for i, u := range users {
						data[i] = map[string]interface{}{
							"id":         u.ID,
							"username":   u.Username,
							"is_pro":     u.IsPro,
							"created_at": u.CreatedAt,
						}
					}
					return cli.WriteJSON(os.Stdout, data)
				}

				if len(users) == 0 {
					fmt.Println("No users found")
					return nil
				}
				fmt.Println("Users:")
				for _, u := range users {
					plan := "free"
					if u.IsPro {
						plan = "pro"
					}
					fmt.Printf("  %s: %s (%s, created: %s)\n", u.ID, u.Username, plan, u.CreatedAt.Format("2006-01-02 15:04:05"))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&output, "output", "text", "Output format (text or json)")

	return cmd
}

func userSetProCmd() *cobra.Command {
	var off bool

	cmd := &cobra.Command{
		Use:   "set-pro <user>",
		Short: "Move a user to the pro plan",
		Long:  "Move a user (ID or username) to the pro plan, or back to free with --off",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withAuth(ctx, func(auth *service.AuthService) error {
				user, err := resolveUser(ctx, auth, args[0])
				if err != nil {
					return err
				}
				if err := auth.SetPro(ctx, user.ID, !off); err != nil {
					return fmt.Errorf("failed to update plan: %w", err)
				}
				plan := "pro"
				if off {
					plan = "free"
				}
				fmt.Printf("User %s is now on the %s plan\n", user.Username, plan)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&off, "off", false, "Move the user back to the free plan")

	return cmd
}
