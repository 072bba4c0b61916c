package domain

import "time"

// Comment belongs to exactly one ticket. The author reference is nulled
// when the account is deleted; deleting the ticket removes the thread.
type Comment struct {
	ID        string
	Content   string
	TicketID  string
	UserID    *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CommentWithAuthor pairs a comment with its resolved author for detail
// views. Author is nil when the account no longer exists.
type CommentWithAuthor struct {
	Comment
	Author *User
}
