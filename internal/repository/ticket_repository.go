package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticketing-api/internal/domain"
)

// TicketFilter captures search parameters. All present fields combine with
// logical AND; an absent field adds no constraint. CreatorID is the
// mandatory scope predicate for non-admin callers.
type TicketFilter struct {
	CreatorID     *string
	AssignedTo    *string
	Status        *domain.TicketStatus
	SearchTerm    *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetDetail(ctx context.Context, id string) (*domain.TicketDetail, error)
	ListByCreator(ctx context.Context, userID string) ([]domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, title, description, status, created_by, assigned_to, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, status, created_by, assigned_to)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.CreatedBy,
		ticket.AssignedTo,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, status=$3, assigned_to=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.AssignedTo,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes the ticket; its comments are cascade-deleted by the
// comments.ticket_id foreign key.
func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.CreatedBy,
		&ticket.AssignedTo,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// GetDetail is the single aggregate read for detail views: the ticket with
// creator, assignee, and its comment thread (each comment with its author).
func (r *ticketRepository) GetDetail(ctx context.Context, id string) (*domain.TicketDetail, error) {
	ticket, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &domain.TicketDetail{Ticket: *ticket}

	const userQuery = `
        SELECT id, given_name, family_name, email, password_hash, role, created_at, updated_at
        FROM users WHERE id=$1`
	if ticket.CreatedBy != nil {
		var creator domain.User
		if err := r.pool.QueryRow(ctx, userQuery, *ticket.CreatedBy).Scan(
			&creator.ID, &creator.GivenName, &creator.FamilyName, &creator.Email,
			&creator.PasswordHash, &creator.Role, &creator.CreatedAt, &creator.UpdatedAt,
		); err != nil && err != pgx.ErrNoRows {
			return nil, err
		} else if err == nil {
			detail.Creator = &creator
		}
	}
	if ticket.AssignedTo != nil {
		var assignee domain.User
		if err := r.pool.QueryRow(ctx, userQuery, *ticket.AssignedTo).Scan(
			&assignee.ID, &assignee.GivenName, &assignee.FamilyName, &assignee.Email,
			&assignee.PasswordHash, &assignee.Role, &assignee.CreatedAt, &assignee.UpdatedAt,
		); err != nil && err != pgx.ErrNoRows {
			return nil, err
		} else if err == nil {
			detail.Assignee = &assignee
		}
	}

	const commentQuery = `
        SELECT c.id, c.content, c.ticket_id, c.user_id, c.created_at, c.updated_at,
               u.id, u.given_name, u.family_name, u.email, u.password_hash, u.role, u.created_at, u.updated_at
        FROM comments c
        LEFT JOIN users u ON u.id = c.user_id
        WHERE c.ticket_id=$1
        ORDER BY c.created_at ASC`
	rows, err := r.pool.Query(ctx, commentQuery, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var comment domain.CommentWithAuthor
		var authorID, givenName, familyName, email, hash *string
		var role *domain.Role
		var createdAt, updatedAt *time.Time
		if err := rows.Scan(
			&comment.ID, &comment.Content, &comment.TicketID, &comment.UserID,
			&comment.CreatedAt, &comment.UpdatedAt,
			&authorID, &givenName, &familyName, &email, &hash, &role, &createdAt, &updatedAt,
		); err != nil {
			return nil, err
		}
		if authorID != nil {
			comment.Author = &domain.User{
				ID:           *authorID,
				GivenName:    *givenName,
				FamilyName:   *familyName,
				Email:        *email,
				PasswordHash: *hash,
				Role:         *role,
				CreatedAt:    *createdAt,
				UpdatedAt:    *updatedAt,
			}
		}
		detail.Comments = append(detail.Comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return detail, nil
}

func (r *ticketRepository) ListByCreator(ctx context.Context, userID string) ([]domain.Ticket, error) {
	return r.ListWithFilter(ctx, TicketFilter{CreatorID: &userID})
}

// BuildTicketQuery composes the filtered listing statement. Exposed at
// package level so clause generation can be exercised without a pool.
func BuildTicketQuery(filter TicketFilter) (string, []any) {
	base := `SELECT ` + ticketColumns + ` FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CreatorID != nil {
		args = append(args, *filter.CreatorID)
		clauses = append(clauses, fmt.Sprintf("created_by=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.CreatedAfter != nil {
		args = append(args, *filter.CreatedAfter)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedBefore != nil {
		args = append(args, *filter.CreatedBefore)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC`, base, strings.Join(clauses, " AND "))
	return query, args
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	query, args := BuildTicketQuery(filter)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Status,
			&ticket.CreatedBy,
			&ticket.AssignedTo,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
