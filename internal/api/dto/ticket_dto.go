package dto

import (
	"encoding/json"
	"time"

	"github.com/spec-kit/ticketing-api/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	AssignedTo  *string `json:"assigned_to"`
}

// UpdateTicketRequest payload. AssignedTo uses RawMessage so that an
// explicit null (clear the assignee) is distinguishable from absence.
type UpdateTicketRequest struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Status      *domain.TicketStatus `json:"status"`
	AssignedTo  json.RawMessage      `json:"assigned_to"`
}

// TicketResponse is the outward ticket shape.
type TicketResponse struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      domain.TicketStatus `json:"status"`
	CreatedBy   *string             `json:"created_by"`
	AssignedTo  *string             `json:"assigned_to"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// TicketDetailResponse provides the aggregate view for detail reads.
type TicketDetailResponse struct {
	TicketResponse
	Creator  *UserResponse               `json:"creator"`
	Assignee *UserResponse               `json:"assignee"`
	Comments []CommentWithAuthorResponse `json:"comments"`
}

// CommentWithAuthorResponse pairs a comment with its resolved author.
// Author is null when the account no longer exists.
type CommentWithAuthorResponse struct {
	CommentResponse
	Author *UserResponse `json:"author"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Status:      ticket.Status,
		CreatedBy:   ticket.CreatedBy,
		AssignedTo:  ticket.AssignedTo,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}

// NewTicketDetailResponse maps the aggregate, stripping password hashes
// from every embedded user.
func NewTicketDetailResponse(detail *domain.TicketDetail) TicketDetailResponse {
	resp := TicketDetailResponse{TicketResponse: NewTicketResponse(&detail.Ticket)}
	if detail.Creator != nil {
		creator := NewUserResponse(detail.Creator)
		resp.Creator = &creator
	}
	if detail.Assignee != nil {
		assignee := NewUserResponse(detail.Assignee)
		resp.Assignee = &assignee
	}
	resp.Comments = make([]CommentWithAuthorResponse, 0, len(detail.Comments))
	for i := range detail.Comments {
		item := CommentWithAuthorResponse{CommentResponse: NewCommentResponse(&detail.Comments[i].Comment)}
		if detail.Comments[i].Author != nil {
			author := NewUserResponse(detail.Comments[i].Author)
			item.Author = &author
		}
		resp.Comments = append(resp.Comments, item)
	}
	return resp
}
