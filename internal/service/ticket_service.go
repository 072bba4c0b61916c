package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticketing-api/internal/auth"
	"github.com/spec-kit/ticketing-api/internal/domain"
	"github.com/spec-kit/ticketing-api/internal/events"
	"github.com/spec-kit/ticketing-api/internal/persistence"
	"github.com/spec-kit/ticketing-api/internal/repository"
	apperrors "github.com/spec-kit/ticketing-api/pkg/util"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	cache      *persistence.Redis
	dispatcher events.Dispatcher
}

// TicketDependencies bundles requirements for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Cache      *persistence.Redis
	Dispatcher events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	AssignedTo  *string
}

// TicketUpdateInput describes a ticket patch. Nil fields are untouched.
// AssignedToSet distinguishes "assignee present in the patch" (resolution
// re-run, possibly clearing it) from "assignee absent".
type TicketUpdateInput struct {
	Title         *string
	Description   *string
	Status        *domain.TicketStatus
	AssignedTo    *string
	AssignedToSet bool
}

// SearchCriteria describes the ticket search and filter parameters. All
// supplied filters combine with AND; absence means no constraint.
type SearchCriteria struct {
	Search        *string
	Status        *domain.TicketStatus
	AssignedTo    *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// Create opens a ticket attributed to the caller. An assignee that does not
// resolve to an existing user is silently omitted.
func (s *TicketService) Create(ctx context.Context, actor *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	creatorID := actor.ID
	ticket := &domain.Ticket{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Status:      domain.TicketStatusOpen,
		CreatedBy:   &creatorID,
		AssignedTo:  s.resolveAssignee(ctx, input.AssignedTo),
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.TicketCreatedPayload{
			Title:      ticket.Title,
			AssignedTo: ticket.AssignedTo,
		},
	})
	return ticket, nil
}

// GetDetail loads the ticket aggregate (creator, assignee, comment thread)
// for the caller, serving from the cache when warm. Missing tickets and
// tickets owned by someone else both fail with Forbidden.
func (s *TicketService) GetDetail(ctx context.Context, actor *domain.User, id string) (*domain.TicketDetail, error) {
	detail, err := s.loadDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.Authorize(actor.Role, actor.ID, detail.CreatedBy,
		"you can only view your own tickets", domain.RoleAdmin, domain.RoleUser); err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *TicketService) loadDetail(ctx context.Context, id string) (*domain.TicketDetail, error) {
	key := ticketCacheKey(id)
	var cached domain.TicketDetail
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	detail, err := s.tickets.GetDetail(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewForbidden("ticket not found")
		}
		return nil, apperrors.MapError(err)
	}
	scrubDetailHashes(detail)
	s.cache.SetJSON(ctx, key, detail)
	return detail, nil
}

// scrubDetailHashes clears password hashes from the aggregate before it is
// cached or returned; the hash is only needed for authentication reads.
func scrubDetailHashes(detail *domain.TicketDetail) {
	if detail.Creator != nil {
		detail.Creator.PasswordHash = ""
	}
	if detail.Assignee != nil {
		detail.Assignee.PasswordHash = ""
	}
	for i := range detail.Comments {
		if detail.Comments[i].Author != nil {
			detail.Comments[i].Author.PasswordHash = ""
		}
	}
}

// Update patches a ticket. Title and description are owner-or-admin;
// status and assignment are admin-only. Assignee resolution is re-run when
// the patch names one, clearing the reference if it no longer resolves.
func (s *TicketService) Update(ctx context.Context, actor *domain.User, id string, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.getOwned(ctx, actor, id, "you can only update your own tickets")
	if err != nil {
		return nil, err
	}

	touchesAdminFields := input.Status != nil || input.AssignedToSet
	if touchesAdminFields && actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("only admins can change status or assignment")
	}

	oldStatus := ticket.Status
	oldAssignee := ticket.AssignedTo

	if input.Title != nil {
		ticket.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		ticket.Description = strings.TrimSpace(*input.Description)
	}
	if input.Status != nil {
		if !domain.ValidTicketStatus(*input.Status) {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": *input.Status})
		}
		ticket.Status = *input.Status
	}
	if input.AssignedToSet {
		ticket.AssignedTo = s.resolveAssignee(ctx, input.AssignedTo)
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.cache.Invalidate(ctx, ticketCacheKey(ticket.ID))

	if ticket.Status != oldStatus {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticket.ID,
			ActorID:  actor.ID,
			Payload: events.TicketStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: ticket.Status,
			},
		})
	}
	if input.AssignedToSet && !sameRef(oldAssignee, ticket.AssignedTo) {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketAssigned,
			TicketID: ticket.ID,
			ActorID:  actor.ID,
			Payload:  events.TicketAssignedPayload{AssignedTo: ticket.AssignedTo},
		})
	}
	return ticket, nil
}

// Remove deletes a ticket and, through the database cascade, its comments.
func (s *TicketService) Remove(ctx context.Context, actor *domain.User, id string) error {
	ticket, err := s.getOwned(ctx, actor, id, "you can only delete your own tickets")
	if err != nil {
		return err
	}
	if err := s.tickets.Delete(ctx, ticket.ID); err != nil {
		return apperrors.MapError(err)
	}
	s.cache.Invalidate(ctx, ticketCacheKey(ticket.ID))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
	})
	return nil
}

// FindByUser returns tickets created by the given user.
func (s *TicketService) FindByUser(ctx context.Context, userID string) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListByCreator(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// SearchAndFilter lists tickets matching the criteria, newest first.
// Non-admin callers are scoped to their own tickets before any optional
// filter applies; the scope overrides whatever the caller supplied.
func (s *TicketService) SearchAndFilter(ctx context.Context, actor *domain.User, criteria SearchCriteria) ([]domain.Ticket, error) {
	filter := repository.TicketFilter{
		AssignedTo:    criteria.AssignedTo,
		Status:        criteria.Status,
		SearchTerm:    criteria.Search,
		CreatedAfter:  criteria.CreatedAfter,
		CreatedBefore: criteria.CreatedBefore,
	}
	if actor.Role != domain.RoleAdmin {
		callerID := actor.ID
		filter.CreatorID = &callerID
	}
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

func (s *TicketService) getOwned(ctx context.Context, actor *domain.User, id, message string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewForbidden("ticket not found")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.Authorize(actor.Role, actor.ID, ticket.CreatedBy,
		message, domain.RoleAdmin, domain.RoleUser); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) resolveAssignee(ctx context.Context, assignedTo *string) *string {
	if assignedTo == nil || *assignedTo == "" {
		return nil
	}
	if _, err := s.users.GetByID(ctx, *assignedTo); err != nil {
		return nil
	}
	return assignedTo
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func ticketCacheKey(id string) string {
	return "ticket:detail:" + id
}

func sameRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
