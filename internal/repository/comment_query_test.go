package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildCommentQueryByTicketAscending(t *testing.T) {
	query, args := BuildCommentQuery(CommentScope{TicketID: strPtr("ticket-1")}, nil)
	assert.Contains(t, query, "ticket_id=$1")
	assert.Contains(t, query, "ORDER BY created_at ASC")
	assert.NotContains(t, query, "LIMIT")
	assert.Equal(t, []any{"ticket-1"}, args)
}

func TestBuildCommentQueryByUserDescending(t *testing.T) {
	query, _ := BuildCommentQuery(CommentScope{UserID: strPtr("user-1")}, nil)
	assert.Contains(t, query, "user_id=$1")
	assert.Contains(t, query, "ORDER BY created_at DESC")
}

func TestBuildCommentQueryAllDescending(t *testing.T) {
	query, args := BuildCommentQuery(CommentScope{}, nil)
	assert.Contains(t, query, "ORDER BY created_at DESC")
	assert.Empty(t, args)
}

func TestBuildCommentQueryTicketAndUserDescending(t *testing.T) {
	query, args := BuildCommentQuery(CommentScope{TicketID: strPtr("t"), UserID: strPtr("u")}, nil)
	assert.Contains(t, query, "ticket_id=$1")
	assert.Contains(t, query, "user_id=$2")
	assert.Contains(t, query, "ORDER BY created_at DESC")
	assert.Len(t, args, 2)
}

func TestBuildCommentQueryPagination(t *testing.T) {
	query, _ := BuildCommentQuery(CommentScope{TicketID: strPtr("t")}, &Page{Limit: 10, Offset: 10})
	assert.Contains(t, query, "LIMIT 10 OFFSET 10")
}
