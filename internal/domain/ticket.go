package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// ValidTicketStatus reports whether the value is a known status.
func ValidTicketStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed:
		return true
	}
	return false
}

// Ticket is the unit of work. Creator and assignee references are nulled
// when the referenced user is deleted, never cascaded.
type Ticket struct {
	ID          string
	Title       string
	Description string
	Status      TicketStatus
	CreatedBy   *string
	AssignedTo  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TicketDetail is the aggregate read for detail views: the ticket with its
// creator, assignee and comment thread resolved.
type TicketDetail struct {
	Ticket
	Creator  *User
	Assignee *User
	Comments []CommentWithAuthor
}
