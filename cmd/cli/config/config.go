package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const (
	defaultAPIURL = "http://localhost:8080"
	tokenFileName = ".bookshelf_token"
)

// ErrNotLoggedIn is returned by ReadToken when no token has been saved.
var ErrNotLoggedIn = errors.New("not logged in, run `bookshelf login`")

// APIURL resolves the API base URL: the --api flag, then BOOKSHELF_API_URL,
// then http://localhost:8080.
func APIURL(cmd *cobra.Command) string {
	if cmd != nil {
		if f := cmd.Flag("api"); f != nil && f.Value.String() != "" {
			return strings.TrimRight(f.Value.String(), "/")
		}
	}
	if v := os.Getenv("BOOKSHELF_API_URL"); v != "" {
		return strings.TrimRight(v, "/")
	}
	return defaultAPIURL
}

// TokenPath is ~/.bookshelf_token unless BOOKSHELF_TOKEN_FILE is set.
func TokenPath() (string, error) {
	if p := os.Getenv("BOOKSHELF_TOKEN_FILE"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, tokenFileName), nil
}

func SaveToken(token string) error {
	path, err := TokenPath()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token), 0o600)
}

func ReadToken() (string, error) {
	path, err := TokenPath()
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotLoggedIn
	}
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(b))
	if token == "" {
		return "", ErrNotLoggedIn
	}
	return token, nil
}

// DeleteToken removes the saved token. A missing file is not an error.
func DeleteToken() error {
	path, err := TokenPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
