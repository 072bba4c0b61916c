package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticketing-api/internal/domain"
)

// Page bounds a listing. Offset is computed by the caller as (page-1)*limit.
type Page struct {
	Limit  int
	Offset int
}

// CommentScope selects which comments a listing or count covers. Nil fields
// add no constraint.
type CommentScope struct {
	TicketID *string
	UserID   *string
}

// CommentRepository encapsulates comment persistence. Listings by ticket
// come back ascending by creation time (thread order); everything else
// descending (newest first).
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	Update(ctx context.Context, comment *domain.Comment) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	List(ctx context.Context, scope CommentScope, page *Page) ([]domain.Comment, error)
	Count(ctx context.Context, scope CommentScope) (int64, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository instantiates repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

const commentColumns = `id, content, ticket_id, user_id, created_at, updated_at`

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (content, ticket_id, user_id)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		comment.Content,
		comment.TicketID,
		comment.UserID,
	).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
}

func (r *commentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	const query = `UPDATE comments SET content=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, comment.Content, comment.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	var comment domain.Comment
	if err := r.pool.QueryRow(ctx, `SELECT `+commentColumns+` FROM comments WHERE id=$1`, id).Scan(
		&comment.ID,
		&comment.Content,
		&comment.TicketID,
		&comment.UserID,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &comment, nil
}

// BuildCommentQuery composes a scoped listing statement. Ticket-scoped
// listings without a user constraint read in thread order (ascending).
func BuildCommentQuery(scope CommentScope, page *Page) (string, []any) {
	clauses, args := commentClauses(scope)

	order := "DESC"
	if scope.TicketID != nil && scope.UserID == nil {
		order = "ASC"
	}

	query := fmt.Sprintf(`SELECT %s FROM comments WHERE %s ORDER BY created_at %s`,
		commentColumns, strings.Join(clauses, " AND "), order)
	if page != nil {
		query = fmt.Sprintf("%s LIMIT %d OFFSET %d", query, page.Limit, page.Offset)
	}
	return query, args
}

func commentClauses(scope CommentScope) ([]string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	if scope.TicketID != nil {
		args = append(args, *scope.TicketID)
		clauses = append(clauses, fmt.Sprintf("ticket_id=$%d", len(args)))
	}
	if scope.UserID != nil {
		args = append(args, *scope.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	return clauses, args
}

func (r *commentRepository) List(ctx context.Context, scope CommentScope, page *Page) ([]domain.Comment, error) {
	query, args := BuildCommentQuery(scope, page)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Comment
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.Content,
			&comment.TicketID,
			&comment.UserID,
			&comment.CreatedAt,
			&comment.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}

func (r *commentRepository) Count(ctx context.Context, scope CommentScope) (int64, error) {
	clauses, args := commentClauses(scope)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM comments WHERE %s`, strings.Join(clauses, " AND "))

	var total int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
