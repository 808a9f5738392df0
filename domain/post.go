package domain

import (
	"time"
)

type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostPage is one page of posts in store order plus the size of the whole set.
type PostPage struct {
	Posts   []Post
	Total   int
	Page    int
	PerPage int
}

// LastPage is the number of the last non-empty page, at least 1.
func (p PostPage) LastPage() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 1
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}
