package models

type Book struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Pages       int     `json:"pages"`
	Img         *string `json:"img"`
	AuthorID    int     `json:"author_id"`
}

// BookWithAuthor is the list view of a book: the book row joined with its author.
type BookWithAuthor struct {
	Book
	Author Author `json:"author"`
}
