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

// DefaultPageLimit applies when a paginated listing gets no usable limit.
const DefaultPageLimit = 10

// CommentService coordinates the comment thread on tickets.
type CommentService struct {
	comments   repository.CommentRepository
	tickets    repository.TicketRepository
	cache      *persistence.Redis
	dispatcher events.Dispatcher
}

// CommentDependencies bundles requirements for the comment service.
type CommentDependencies struct {
	CommentRepo repository.CommentRepository
	TicketRepo  repository.TicketRepository
	Cache       *persistence.Redis
	Dispatcher  events.Dispatcher
}

// NewCommentService constructs the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	return &CommentService{
		comments:   deps.CommentRepo,
		tickets:    deps.TicketRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
	}
}

// PagedComments couples a page of comments with the total for its scope.
type PagedComments struct {
	Items []domain.Comment
	Total int64
	Page  int
	Limit int
}

// NormalizePage clamps pagination values: pages below 1 become 1, limits
// below 1 fall back to the default. Offset is (page-1)*limit.
func NormalizePage(page, limit int) repository.Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	return repository.Page{Limit: limit, Offset: (page - 1) * limit}
}

// Create attaches a comment to a ticket, authored by the caller. A missing
// ticket fails with Forbidden.
func (s *CommentService) Create(ctx context.Context, actor *domain.User, ticketID, content string) (*domain.Comment, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewForbidden("ticket not found")
		}
		return nil, apperrors.MapError(err)
	}

	authorID := actor.ID
	comment := &domain.Comment{
		Content:  strings.TrimSpace(content),
		TicketID: ticketID,
		UserID:   &authorID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.cache.Invalidate(ctx, ticketCacheKey(ticketID))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventCommentAdded,
		TicketID: ticketID,
		ActorID:  actor.ID,
		Payload: events.CommentAddedPayload{
			CommentID: comment.ID,
			Preview:   preview(comment.Content, 120),
		},
	})
	return comment, nil
}

// Get loads a comment for the caller. Missing comments and comments
// authored by someone else both fail with Forbidden.
func (s *CommentService) Get(ctx context.Context, actor *domain.User, id string) (*domain.Comment, error) {
	return s.getOwned(ctx, actor, id, "you can only view your own comments")
}

// Update replaces a comment's content, author-or-admin only.
func (s *CommentService) Update(ctx context.Context, actor *domain.User, id, content string) (*domain.Comment, error) {
	comment, err := s.getOwned(ctx, actor, id, "you can only update your own comments")
	if err != nil {
		return nil, err
	}
	comment.Content = strings.TrimSpace(content)
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.cache.Invalidate(ctx, ticketCacheKey(comment.TicketID))
	return comment, nil
}

// Remove deletes a comment, author-or-admin only.
func (s *CommentService) Remove(ctx context.Context, actor *domain.User, id string) error {
	comment, err := s.getOwned(ctx, actor, id, "you can only delete your own comments")
	if err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		return apperrors.MapError(err)
	}
	s.cache.Invalidate(ctx, ticketCacheKey(comment.TicketID))
	return nil
}

// FindByTicket lists a ticket's comments in thread order.
func (s *CommentService) FindByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	return s.list(ctx, repository.CommentScope{TicketID: &ticketID}, nil)
}

// FindByUser lists a user's comments, newest first.
func (s *CommentService) FindByUser(ctx context.Context, userID string) ([]domain.Comment, error) {
	return s.list(ctx, repository.CommentScope{UserID: &userID}, nil)
}

// FindAll lists every comment, newest first.
func (s *CommentService) FindAll(ctx context.Context) ([]domain.Comment, error) {
	return s.list(ctx, repository.CommentScope{}, nil)
}

// FindByTicketAndUser lists one user's comments on one ticket, newest first.
func (s *CommentService) FindByTicketAndUser(ctx context.Context, ticketID, userID string) ([]domain.Comment, error) {
	return s.list(ctx, repository.CommentScope{TicketID: &ticketID, UserID: &userID}, nil)
}

// FindByTicketPaginated pages through a ticket's thread, with the total
// for pagination metadata.
func (s *CommentService) FindByTicketPaginated(ctx context.Context, ticketID string, page, limit int) (*PagedComments, error) {
	return s.paginate(ctx, repository.CommentScope{TicketID: &ticketID}, page, limit)
}

// FindByUserPaginated pages through a user's comments.
func (s *CommentService) FindByUserPaginated(ctx context.Context, userID string, page, limit int) (*PagedComments, error) {
	return s.paginate(ctx, repository.CommentScope{UserID: &userID}, page, limit)
}

// FindAllPaginated pages through all comments.
func (s *CommentService) FindAllPaginated(ctx context.Context, page, limit int) (*PagedComments, error) {
	return s.paginate(ctx, repository.CommentScope{}, page, limit)
}

// FindByTicketAndUserPaginated pages through one user's comments on one ticket.
func (s *CommentService) FindByTicketAndUserPaginated(ctx context.Context, ticketID, userID string, page, limit int) (*PagedComments, error) {
	return s.paginate(ctx, repository.CommentScope{TicketID: &ticketID, UserID: &userID}, page, limit)
}

// CountByTicket returns the comment total for a ticket.
func (s *CommentService) CountByTicket(ctx context.Context, ticketID string) (int64, error) {
	return s.count(ctx, repository.CommentScope{TicketID: &ticketID})
}

// CountByUser returns the comment total for a user.
func (s *CommentService) CountByUser(ctx context.Context, userID string) (int64, error) {
	return s.count(ctx, repository.CommentScope{UserID: &userID})
}

// CountAll returns the overall comment total.
func (s *CommentService) CountAll(ctx context.Context) (int64, error) {
	return s.count(ctx, repository.CommentScope{})
}

// CountByTicketAndUser returns the total for a ticket+user combination.
func (s *CommentService) CountByTicketAndUser(ctx context.Context, ticketID, userID string) (int64, error) {
	return s.count(ctx, repository.CommentScope{TicketID: &ticketID, UserID: &userID})
}

func (s *CommentService) list(ctx context.Context, scope repository.CommentScope, page *repository.Page) ([]domain.Comment, error) {
	comments, err := s.comments.List(ctx, scope, page)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return comments, nil
}

func (s *CommentService) paginate(ctx context.Context, scope repository.CommentScope, page, limit int) (*PagedComments, error) {
	bounds := NormalizePage(page, limit)
	items, err := s.list(ctx, scope, &bounds)
	if err != nil {
		return nil, err
	}
	total, err := s.count(ctx, scope)
	if err != nil {
		return nil, err
	}
	return &PagedComments{
		Items: items,
		Total: total,
		Page:  bounds.Offset/bounds.Limit + 1,
		Limit: bounds.Limit,
	}, nil
}

func (s *CommentService) count(ctx context.Context, scope repository.CommentScope) (int64, error) {
	total, err := s.comments.Count(ctx, scope)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return total, nil
}

func (s *CommentService) getOwned(ctx context.Context, actor *domain.User, id, message string) (*domain.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewForbidden("comment not found")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.Authorize(actor.Role, actor.ID, comment.UserID,
		message, domain.RoleAdmin, domain.RoleUser); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) publishEvent(ctx context.Context, event events.Event) {
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

// preview truncates on rune boundaries so multibyte content stays valid.
func preview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
