package db

import "time"

// Document is one analyzed text.
type Document struct {
	ID         int64
	Engine     string
	Title      string
	URL        string
	Text       string
	TokenCount int
	CreatedAt  time.Time
}
