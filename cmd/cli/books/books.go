package books

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/crucial707/bookshelf/cmd/cli/client"
	"github.com/crucial707/bookshelf/cmd/cli/config"
	"github.com/crucial707/bookshelf/cmd/cli/output"
	"github.com/crucial707/bookshelf/internal/models"
)

// ==========================
// Init Books
// ==========================
func InitBooks(rootCmd *cobra.Command) {
	booksCmd := &cobra.Command{
		Use:   "books",
		Short: "List, create and delete books",
	}

	booksCmd.AddCommand(
		listBooksCmd(),
		createBookCmd(),
		deleteBookCmd(),
	)

	rootCmd.AddCommand(booksCmd)
}

func authedClient(cmd *cobra.Command) (*client.Client, error) {
	token, err := config.ReadToken()
	if err != nil {
		return nil, err
	}
	return client.New(config.APIURL(cmd), token), nil
}

// ==========================
// LIST
// ==========================
func listBooksCmd() *cobra.Command {
	var skip, limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List books with their authors",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient(cmd)
			if err != nil {
				return err
			}

			var books []models.BookWithAuthor
			path := fmt.Sprintf("/books?skip=%d&limit=%d", skip, limit)
			if err := c.JSON(cmd.Context(), http.MethodGet, path, nil, &books); err != nil {
				return err
			}

			if asJSON {
				return output.PrintJSON(cmd.OutOrStdout(), books)
			}
			rows := make([][]interface{}, 0, len(books))
			for _, b := range books {
				rows = append(rows, []interface{}{
					b.ID, b.Name, b.Pages, b.Author.FirstName + " " + b.Author.LastName, output.Deref(b.Img),
				})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"ID", "Name", "Pages", "Author", "Image"}, rows)
			return nil
		},
	}

	cmd.Flags().IntVar(&skip, "skip", 0, "number of books to skip")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of books to return")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	return cmd
}

// ==========================
// CREATE
// ==========================
func createBookCmd() *cobra.Command {
	var name, description, img string
	var pages, authorID int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a book",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient(cmd)
			if err != nil {
				return err
			}

			payload := map[string]any{
				"name":        name,
				"description": description,
				"pages":       pages,
				"author_id":   authorID,
			}
			if img != "" {
				payload["img"] = img
			}

			var book models.Book
			if err := c.JSON(cmd.Context(), http.MethodPost, "/books/create", payload, &book); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created book %d: %s\n", book.ID, book.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "book title")
	cmd.Flags().StringVar(&description, "description", "", "short description")
	cmd.Flags().IntVar(&pages, "pages", 0, "page count")
	cmd.Flags().IntVar(&authorID, "author-id", 0, "id of an existing author")
	cmd.Flags().StringVar(&img, "img", "", "optional image URL")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("author-id")
	return cmd
}

// ==========================
// DELETE
// ==========================
func deleteBookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid book id %q", args[0])
			}
			c, err := authedClient(cmd)
			if err != nil {
				return err
			}
			if err := c.JSON(cmd.Context(), http.MethodDelete, "/books/delete/"+strconv.Itoa(id), nil, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Book %d deleted\n", id)
			return nil
		},
	}
}
