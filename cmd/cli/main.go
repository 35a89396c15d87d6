package main

import (
	"fmt"
	"os"

	"github.com/crucial707/bookshelf/cmd/cli/auth"
	"github.com/crucial707/bookshelf/cmd/cli/authors"
	"github.com/crucial707/bookshelf/cmd/cli/books"
	"github.com/crucial707/bookshelf/cmd/cli/root"
)

func main() {
	rootCmd := root.GetRoot()
	auth.InitAuth(rootCmd)
	books.InitBooks(rootCmd)
	authors.InitAuthors(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
