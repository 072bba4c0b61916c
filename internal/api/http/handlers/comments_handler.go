package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketing-api/internal/api/dto"
	"github.com/spec-kit/ticketing-api/internal/auth"
	"github.com/spec-kit/ticketing-api/internal/service"
	apperrors "github.com/spec-kit/ticketing-api/pkg/util"
)

// CommentsHandler manages comment endpoints.
type CommentsHandler struct {
	service *service.CommentService
}

// NewCommentsHandler constructs handler.
func NewCommentsHandler(commentService *service.CommentService) *CommentsHandler {
	return &CommentsHandler{service: commentService}
}

// Create POST /comments?ticketId=.
func (h *CommentsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticketID := c.Query("ticketId")
	if ticketID == "" {
		return apperrors.NewValidationError("ticketId query parameter required", nil)
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Content == "" {
		return apperrors.NewValidationError("content required", nil)
	}

	comment, err := h.service.Create(c.Context(), principal.User, ticketID, req.Content)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCommentResponse(comment)})
}

// FindAll GET /comments.
func (h *CommentsHandler) FindAll(c *fiber.Ctx) error {
	comments, err := h.service.FindAll(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCommentResponses(comments)})
}

// FindByTicket GET /comments/ticket/:ticketId.
func (h *CommentsHandler) FindByTicket(c *fiber.Ctx) error {
	comments, err := h.service.FindByTicket(c.Context(), c.Params("ticketId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCommentResponses(comments)})
}

// FindByUser GET /comments/user/:userId.
func (h *CommentsHandler) FindByUser(c *fiber.Ctx) error {
	comments, err := h.service.FindByUser(c.Context(), c.Params("userId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCommentResponses(comments)})
}

// FindByTicketAndUser GET /comments/ticket/:ticketId/user/:userId.
func (h *CommentsHandler) FindByTicketAndUser(c *fiber.Ctx) error {
	comments, err := h.service.FindByTicketAndUser(c.Context(), c.Params("ticketId"), c.Params("userId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCommentResponses(comments)})
}

// Get GET /comments/:id.
func (h *CommentsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	comment, err := h.service.Get(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCommentResponse(comment)})
}

// Update PUT /comments/:id.
func (h *CommentsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Content == "" {
		return apperrors.NewValidationError("content required", nil)
	}

	comment, err := h.service.Update(c.Context(), principal.User, c.Params("id"), req.Content)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCommentResponse(comment)})
}

// Remove DELETE /comments/:id.
func (h *CommentsHandler) Remove(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.Remove(c.Context(), principal.User, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// FindAllPaginated GET /comments/paginated.
func (h *CommentsHandler) FindAllPaginated(c *fiber.Ctx) error {
	page, limit := parsePagination(c)
	result, err := h.service.FindAllPaginated(c.Context(), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(pagedResponse(result))
}

// FindByTicketPaginated GET /comments/ticket/:ticketId/paginated.
func (h *CommentsHandler) FindByTicketPaginated(c *fiber.Ctx) error {
	page, limit := parsePagination(c)
	result, err := h.service.FindByTicketPaginated(c.Context(), c.Params("ticketId"), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(pagedResponse(result))
}

// FindByUserPaginated GET /comments/user/:userId/paginated.
func (h *CommentsHandler) FindByUserPaginated(c *fiber.Ctx) error {
	page, limit := parsePagination(c)
	result, err := h.service.FindByUserPaginated(c.Context(), c.Params("userId"), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(pagedResponse(result))
}

// FindByTicketAndUserPaginated GET /comments/ticket/:ticketId/user/:userId/paginated.
func (h *CommentsHandler) FindByTicketAndUserPaginated(c *fiber.Ctx) error {
	page, limit := parsePagination(c)
	result, err := h.service.FindByTicketAndUserPaginated(c.Context(), c.Params("ticketId"), c.Params("userId"), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(pagedResponse(result))
}

func parsePagination(c *fiber.Ctx) (page, limit int) {
	return parseInt(c.Query("page"), 1), parseInt(c.Query("limit"), service.DefaultPageLimit)
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func pagedResponse(result *service.PagedComments) fiber.Map {
	return fiber.Map{
		"data": dto.NewCommentResponses(result.Items),
		"meta": dto.PageMeta{Page: result.Page, Limit: result.Limit, Total: result.Total},
	}
}
