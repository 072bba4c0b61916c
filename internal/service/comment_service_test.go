package service_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticketing-api/internal/domain"
	"github.com/spec-kit/ticketing-api/internal/repository"
	"github.com/spec-kit/ticketing-api/internal/service"
	apperrors "github.com/spec-kit/ticketing-api/pkg/util"
)

func newCommentService(comments *mockCommentRepo, tickets *mockTicketRepo) *service.CommentService {
	return service.NewCommentService(service.CommentDependencies{
		CommentRepo: comments,
		TicketRepo:  tickets,
	})
}

func TestNormalizePage(t *testing.T) {
	cases := []struct {
		name       string
		page       int
		limit      int
		wantLimit  int
		wantOffset int
	}{
		{"second page", 2, 10, 10, 10},
		{"zero page clamps to first", 0, 5, 5, 0},
		{"negative page clamps to first", -3, 5, 5, 0},
		{"zero limit falls back to default", 1, 0, service.DefaultPageLimit, 0},
		{"negative limit falls back to default", 3, -1, service.DefaultPageLimit, 2 * service.DefaultPageLimit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := service.NormalizePage(tc.page, tc.limit)
			assert.Equal(t, tc.wantLimit, got.Limit)
			assert.Equal(t, tc.wantOffset, got.Offset)
		})
	}
}

func TestCommentCreateFailsWhenTicketMissing(t *testing.T) {
	comments := new(mockCommentRepo)
	tickets := new(mockTicketRepo)
	tickets.On("GetByID", mock.Anything, "ghost").Return(nil, pgx.ErrNoRows)

	actor := &domain.User{ID: "user-1", Role: domain.RoleUser}
	svc := newCommentService(comments, tickets)
	_, err := svc.Create(context.Background(), actor, "ghost", "hello")

	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, 403, domainErr.HTTPStatus)
	assert.Equal(t, "ticket not found", domainErr.Message)
	comments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCommentCreateAttributesAuthor(t *testing.T) {
	comments := new(mockCommentRepo)
	tickets := new(mockTicketRepo)
	tickets.On("GetByID", mock.Anything, "ticket-1").Return(&domain.Ticket{ID: "ticket-1"}, nil)
	comments.On("Create", mock.Anything, mock.AnythingOfType("*domain.Comment")).Return(nil)

	actor := &domain.User{ID: "user-1", Role: domain.RoleUser}
	svc := newCommentService(comments, tickets)
	comment, err := svc.Create(context.Background(), actor, "ticket-1", "  needs more detail  ")

	require.NoError(t, err)
	assert.Equal(t, "needs more detail", comment.Content)
	assert.Equal(t, "ticket-1", comment.TicketID)
	require.NotNil(t, comment.UserID)
	assert.Equal(t, "user-1", *comment.UserID)
}

func TestCommentUpdateDeniesNonAuthor(t *testing.T) {
	stored := &domain.Comment{ID: "comment-1", TicketID: "ticket-1", UserID: strPtr("user-2")}
	comments := new(mockCommentRepo)
	comments.On("GetByID", mock.Anything, "comment-1").Return(stored, nil)

	actor := &domain.User{ID: "user-1", Role: domain.RoleUser}
	svc := newCommentService(comments, new(mockTicketRepo))
	_, err := svc.Update(context.Background(), actor, "comment-1", "edited")

	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, 403, domainErr.HTTPStatus)
	assert.Equal(t, "you can only update your own comments", domainErr.Message)
	comments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCommentUpdateMissingIsForbidden(t *testing.T) {
	comments := new(mockCommentRepo)
	comments.On("GetByID", mock.Anything, "ghost").Return(nil, pgx.ErrNoRows)

	actor := &domain.User{ID: "user-1", Role: domain.RoleUser}
	svc := newCommentService(comments, new(mockTicketRepo))
	_, err := svc.Update(context.Background(), actor, "ghost", "edited")

	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, 403, domainErr.HTTPStatus)
	assert.Equal(t, "comment not found", domainErr.Message)
}

func TestCommentRemoveAdminBypassesOwnership(t *testing.T) {
	stored := &domain.Comment{ID: "comment-1", TicketID: "ticket-1", UserID: strPtr("user-2")}
	comments := new(mockCommentRepo)
	comments.On("GetByID", mock.Anything, "comment-1").Return(stored, nil)
	comments.On("Delete", mock.Anything, "comment-1").Return(nil)

	admin := &domain.User{ID: "admin-1", Role: domain.RoleAdmin}
	svc := newCommentService(comments, new(mockTicketRepo))

	require.NoError(t, svc.Remove(context.Background(), admin, "comment-1"))
	comments.AssertExpectations(t)
}

func TestCommentRemoveDeniesWhenAuthorReferenceCleared(t *testing.T) {
	stored := &domain.Comment{ID: "comment-1", TicketID: "ticket-1", UserID: nil}
	comments := new(mockCommentRepo)
	comments.On("GetByID", mock.Anything, "comment-1").Return(stored, nil)

	actor := &domain.User{ID: "user-1", Role: domain.RoleUser}
	svc := newCommentService(comments, new(mockTicketRepo))
	err := svc.Remove(context.Background(), actor, "comment-1")

	require.Error(t, err)
	assert.Equal(t, 403, apperrors.ToDomainError(err).HTTPStatus)
	comments.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestFindByTicketPaginatedComputesOffsetAndTotal(t *testing.T) {
	comments := new(mockCommentRepo)
	comments.On("List", mock.Anything,
		mock.MatchedBy(func(scope repository.CommentScope) bool {
			return scope.TicketID != nil && *scope.TicketID == "ticket-1" && scope.UserID == nil
		}),
		mock.MatchedBy(func(page *repository.Page) bool {
			return page != nil && page.Limit == 10 && page.Offset == 10
		}),
	).Return([]domain.Comment{{ID: "comment-11"}}, nil)
	comments.On("Count", mock.Anything, mock.Anything).Return(int64(25), nil)

	svc := newCommentService(comments, new(mockTicketRepo))
	paged, err := svc.FindByTicketPaginated(context.Background(), "ticket-1", 2, 10)

	require.NoError(t, err)
	assert.Equal(t, int64(25), paged.Total)
	assert.Equal(t, 2, paged.Page)
	assert.Equal(t, 10, paged.Limit)
	assert.Len(t, paged.Items, 1)
	comments.AssertExpectations(t)
}

func TestFindAllPaginatedClampsPage(t *testing.T) {
	comments := new(mockCommentRepo)
	comments.On("List", mock.Anything, mock.Anything,
		mock.MatchedBy(func(page *repository.Page) bool {
			return page != nil && page.Offset == 0 && page.Limit == service.DefaultPageLimit
		}),
	).Return([]domain.Comment{}, nil)
	comments.On("Count", mock.Anything, mock.Anything).Return(int64(0), nil)

	svc := newCommentService(comments, new(mockTicketRepo))
	paged, err := svc.FindAllPaginated(context.Background(), 0, 0)

	require.NoError(t, err)
	assert.Equal(t, 1, paged.Page)
	assert.Equal(t, service.DefaultPageLimit, paged.Limit)
}

func TestCountByTicketAndUser(t *testing.T) {
	comments := new(mockCommentRepo)
	comments.On("Count", mock.Anything, mock.MatchedBy(func(scope repository.CommentScope) bool {
		return scope.TicketID != nil && scope.UserID != nil
	})).Return(int64(4), nil)

	svc := newCommentService(comments, new(mockTicketRepo))
	total, err := svc.CountByTicketAndUser(context.Background(), "ticket-1", "user-1")

	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
}
