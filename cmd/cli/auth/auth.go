package auth

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/crucial707/bookshelf/cmd/cli/client"
	"github.com/crucial707/bookshelf/cmd/cli/config"
)

// readPassword prompts on the command's error stream and reads one line
// without echo when stdin is a terminal.
var readPassword = func(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(cmd.ErrOrStderr())
		return string(b), err
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// InitAuth registers register, login and logout on the root command.
func InitAuth(rootCmd *cobra.Command) {
	rootCmd.AddCommand(registerCmd(), loginCmd(), logoutCmd())
}

func registerCmd() *cobra.Command {
	var username, email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || email == "" {
				return fmt.Errorf("--username and --email are required")
			}
			password, err := readPassword(cmd, "Password: ")
			if err != nil {
				return err
			}
			if password == "" {
				return fmt.Errorf("password is required")
			}

			var user struct {
				ID       int    `json:"id"`
				Username string `json:"username"`
			}
			c := client.New(config.APIURL(cmd), "")
			payload := map[string]string{"username": username, "email": email, "password": password}
			if err := c.JSON(cmd.Context(), "POST", "/users", payload, &user); err != nil {
				return fmt.Errorf("register: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (id %d). Run `bookshelf login` next.\n", user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "username to register")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	return cmd
}

func loginCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store an access token",
		Long:  "Authenticate against the API and store the bearer token in ~/.bookshelf_token for later commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return fmt.Errorf("--username is required")
			}
			password, err := readPassword(cmd, "Password: ")
			if err != nil {
				return err
			}

			var tok struct {
				AccessToken string `json:"access_token"`
			}
			c := client.New(config.APIURL(cmd), "")
			form := url.Values{"username": {username}, "password": {password}}
			if err := c.Form(cmd.Context(), "/token", form, &tok); err != nil {
				return fmt.Errorf("login: %w", err)
			}
			if tok.AccessToken == "" {
				return fmt.Errorf("login succeeded but no token returned")
			}
			if err := config.SaveToken(tok.AccessToken); err != nil {
				return fmt.Errorf("save token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Login successful. Token stored locally.")
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "username to authenticate as")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.DeleteToken(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}
