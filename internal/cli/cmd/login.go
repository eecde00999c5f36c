package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/sharebox/sharebox/internal/cli/api"
	"github.com/sharebox/sharebox/internal/cli/config"
	"github.com/spf13/cobra"
)

var (
	flagToken    string
	flagEmail    string
	flagPassword string
	flagName     string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with your sharebox server",
	Long: `Authenticate with email and password, or store an existing token.

  sharebox login --email me@example.com
  sharebox login --token eyJhbGciOi...`,
	RunE: runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, password, err := credentials()
		if err != nil {
			return err
		}

		body := map[string]string{"email": email, "password": password, "name": flagName}
		var resp api.Response[api.LoginResponse]
		if err := apiClient.Post("/auth/register", body, &resp); err != nil {
			return fmt.Errorf("registering: %w", err)
		}
		return storeSession(resp.Data)
	},
}

func init() {
	loginCmd.Flags().StringVar(&flagToken, "token", "", "Existing bearer token")
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVar(&flagEmail, "email", "", "Account email")
		c.Flags().StringVar(&flagPassword, "password", "", "Account password (prompted when omitted)")
	}
	registerCmd.Flags().StringVar(&flagName, "name", "", "Display name shown on public files")
	rootCmd.AddCommand(loginCmd, registerCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	if flagToken != "" {
		return loginWithToken(flagToken)
	}

	email, password, err := credentials()
	if err != nil {
		return err
	}

	var resp api.Response[api.LoginResponse]
	if err := apiClient.Post("/auth/login", map[string]string{"email": email, "password": password}, &resp); err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return fmt.Errorf("invalid email or password")
		}
		return fmt.Errorf("logging in: %w", err)
	}
	return storeSession(resp.Data)
}

func loginWithToken(token string) error {
	client := api.NewClient(cfg.ServerURL, token)
	var resp api.Response[api.User]
	if err := client.Get("/auth/me", nil, &resp); err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return fmt.Errorf("invalid token: server returned 401")
		}
		return fmt.Errorf("validating token: %w", err)
	}
	return storeSession(api.LoginResponse{Token: token, User: resp.Data})
}

func storeSession(session api.LoginResponse) error {
	cfg.Token = session.Token
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("Logged in as %s\n", session.User.DisplayName())
	return nil
}

// credentials reads email and password from flags, prompting for whatever
// is missing.
func credentials() (string, string, error) {
	reader := bufio.NewReader(os.Stdin)
	email := strings.TrimSpace(flagEmail)
	if email == "" {
		fmt.Print("Email: ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", "", fmt.Errorf("reading email: %w", err)
		}
		email = strings.TrimSpace(line)
	}

	password := flagPassword
	if password == "" {
		fmt.Print("Password: ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", "", fmt.Errorf("reading password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	if email == "" || password == "" {
		return "", "", fmt.Errorf("email and password are required")
	}
	return email, password, nil
}
