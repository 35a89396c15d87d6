package authors

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/crucial707/bookshelf/cmd/cli/client"
	"github.com/crucial707/bookshelf/cmd/cli/config"
	"github.com/crucial707/bookshelf/cmd/cli/output"
	"github.com/crucial707/bookshelf/internal/models"
)

func InitAuthors(rootCmd *cobra.Command) {
	authorsCmd := &cobra.Command{
		Use:   "authors",
		Short: "List and create authors",
	}
	authorsCmd.AddCommand(listAuthorsCmd(), createAuthorCmd())
	rootCmd.AddCommand(authorsCmd)
}

func listAuthorsCmd() *cobra.Command {
	var skip, limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List authors",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := config.ReadToken()
			if err != nil {
				return err
			}
			c := client.New(config.APIURL(cmd), token)

			var authors []models.Author
			path := fmt.Sprintf("/authors?skip=%d&limit=%d", skip, limit)
			if err := c.JSON(cmd.Context(), http.MethodGet, path, nil, &authors); err != nil {
				return err
			}

			if asJSON {
				return output.PrintJSON(cmd.OutOrStdout(), authors)
			}
			rows := make([][]interface{}, 0, len(authors))
			for _, a := range authors {
				rows = append(rows, []interface{}{a.ID, a.FirstName, a.LastName, output.Deref(a.Bio)})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"ID", "First name", "Last name", "Bio"}, rows)
			return nil
		},
	}

	cmd.Flags().IntVar(&skip, "skip", 0, "number of authors to skip")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of authors to return")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	return cmd
}

func createAuthorCmd() *cobra.Command {
	var first, last, bio string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an author",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := config.ReadToken()
			if err != nil {
				return err
			}
			c := client.New(config.APIURL(cmd), token)

			payload := map[string]any{"first_name": first, "last_name": last}
			if bio != "" {
				payload["bio"] = bio
			}
			var a models.Author
			if err := c.JSON(cmd.Context(), http.MethodPost, "/authors/create", payload, &a); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created author %d: %s %s\n", a.ID, a.FirstName, a.LastName)
			return nil
		},
	}

	cmd.Flags().StringVar(&first, "first-name", "", "first name")
	cmd.Flags().StringVar(&last, "last-name", "", "last name")
	cmd.Flags().StringVar(&bio, "bio", "", "optional biography")
	_ = cmd.MarkFlagRequired("first-name")
	_ = cmd.MarkFlagRequired("last-name")
	return cmd
}
