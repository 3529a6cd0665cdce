package client

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// AuthCmd creates the auth parent command
func AuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication credentials",
		Long:  "Register, login, logout, and check authentication status for the novanote CLI",
	}

	cmd.AddCommand(authRegisterCmd())
	cmd.AddCommand(authLoginCmd())
	cmd.AddCommand(authLogoutCmd())
	cmd.AddCommand(authStatusCmd())

	return cmd
}

func authRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <username>",
		Short: "Create an account and store its API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flagURL, _ := cmd.Flags().GetString("api-url")
			creds, err := ResolveCredentials("", flagURL)
			if err != nil {
				return err
			}

			var resp registerResponse
			c := NewAPIClient("", creds.APIURL)
			if err := c.Post(cmd.Context(), "/v1/register", map[string]string{"username": args[0]}, &resp); err != nil {
				return err
			}

			if err := SaveGlobalConfig(&GlobalConfig{APIKey: resp.Token, APIURL: creds.APIURL}); err != nil {
				return fmt.Errorf("failed to save credentials: %w", err)
			}

			if jsonOutput(cmd) {
				return printJSON(cmd, resp)
			}
			printf(cmd, "Registered %s (%s)\n", resp.User.Username, resp.User.ID)
			printf(cmd, "API key saved. Token: %s\n", resp.Token)
			return nil
		},
	}
}

func authLoginCmd() *cobra.Command {
	var apiKey string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login with an API key",
		Long:  "Store API key and URL in the global config (~/.config/novanote/config.json)",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiURL, _ := cmd.Flags().GetString("api-url")
			if apiURL == "" {
				apiURL = defaultAPIURL
			}
			if apiKey == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Enter API key: ")
				input, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil {
					return fmt.Errorf("failed to read API key: %w", err)
				}
				apiKey = strings.TrimSpace(input)
			}
			if err := runAuthLogin(apiKey, apiURL); err != nil {
				return err
			}
			printf(cmd, "Successfully logged in\n")
			return nil
		},
	}

	cmd.Flags().StringVar(&apiKey, "key", "", "API key (nn_...)")

	return cmd
}

func runAuthLogin(apiKey, apiURL string) error {
	if !IsValidAPIKey(apiKey) {
		return fmt.Errorf("invalid API key format (expected: nn_ + 64 hex characters)")
	}

	config, err := LoadGlobalConfig()
	if err != nil || config == nil {
		config = &GlobalConfig{}
	}
	if config.APIKey != apiKey {
		config.DefaultCollection = ""
	}
	config.APIKey = apiKey
	config.APIURL = apiURL

	if err := SaveGlobalConfig(config); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

func authLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout and clear credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := DeleteGlobalConfig(); err != nil {
				return fmt.Errorf("failed to logout: %w", err)
			}
			printf(cmd, "Successfully logged out\n")
			return nil
		},
	}
}

func authStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		RunE: func(cmd *cobra.Command, args []string) error {
			flagKey, _ := cmd.Flags().GetString("api-key")
			flagURL, _ := cmd.Flags().GetString("api-url")
			creds, err := ResolveCredentials(flagKey, flagURL)
			if err != nil {
				return err
			}

			authenticated := creds.Source != SourceNone
			if jsonOutput(cmd) {
				status := map[string]interface{}{
					"authenticated": authenticated,
					"source":        string(creds.Source),
					"api_url":       creds.APIURL,
				}
				if authenticated {
					status["api_key"] = maskAPIKey(creds.APIKey)
				}
				return printJSON(cmd, status)
			}

			if !authenticated {
				printf(cmd, "Not authenticated\n")
				printf(cmd, "Run 'novanote auth register <username>' or 'novanote auth login'\n")
				return nil
			}
			printf(cmd, "Authenticated: yes\n")
			printf(cmd, "Source: %s\n", creds.Source)
			printf(cmd, "API Key: %s\n", maskAPIKey(creds.APIKey))
			printf(cmd, "API URL: %s\n", creds.APIURL)
			if os.Getenv(envAPIKey) != "" && creds.Source != SourceEnv {
				printf(cmd, "Note: %s is set but overridden\n", envAPIKey)
			}
			return nil
		},
	}
}

func maskAPIKey(key string) string {
	if len(key) < 8 {
		return "***"
	}
	return key[:6] + "..." + key[len(key)-4:]
}
