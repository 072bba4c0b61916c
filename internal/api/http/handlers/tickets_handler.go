package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketing-api/internal/api/dto"
	"github.com/spec-kit/ticketing-api/internal/auth"
	"github.com/spec-kit/ticketing-api/internal/domain"
	"github.com/spec-kit/ticketing-api/internal/service"
	apperrors "github.com/spec-kit/ticketing-api/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Create POST /tickets. The creator is always the caller.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Title == "" || req.Description == "" {
		return apperrors.NewValidationError("title and description required", nil)
	}

	ticket, err := h.service.Create(c.Context(), principal.User, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// List GET /tickets. Admins see everything; users only their own tickets.
// Query filters: search, status, assignedTo, createdAfter, createdBefore.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	criteria := parseSearchCriteria(c)

	var (
		tickets []domain.Ticket
		err     error
	)
	if criteria == (service.SearchCriteria{}) && !principal.IsAdmin() {
		tickets, err = h.service.FindByUser(c.Context(), principal.ID())
	} else {
		tickets, err = h.service.SearchAndFilter(c.Context(), principal.User, criteria)
	}
	if err != nil {
		return err
	}

	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /tickets/:id with creator, assignee and comment thread.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	detail, err := h.service.GetDetail(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetailResponse(detail)})
}

// Update PUT /tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.TicketUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	}
	if len(req.AssignedTo) > 0 {
		input.AssignedToSet = true
		if !bytes.Equal(req.AssignedTo, []byte("null")) {
			var assignee string
			if err := json.Unmarshal(req.AssignedTo, &assignee); err != nil {
				return apperrors.NewValidationError("invalid assigned_to", nil)
			}
			input.AssignedTo = &assignee
		}
	}

	ticket, err := h.service.Update(c.Context(), principal.User, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// Remove DELETE /tickets/:id.
func (h *TicketsHandler) Remove(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.Remove(c.Context(), principal.User, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func parseSearchCriteria(c *fiber.Ctx) service.SearchCriteria {
	criteria := service.SearchCriteria{}
	if search := c.Query("search"); search != "" {
		criteria.Search = &search
	}
	if status := c.Query("status"); status != "" {
		value := domain.TicketStatus(status)
		criteria.Status = &value
	}
	if assignee := c.Query("assignedTo"); assignee != "" {
		criteria.AssignedTo = &assignee
	}
	if after := parseTime(c.Query("createdAfter")); after != nil {
		criteria.CreatedAfter = after
	}
	if before := parseTime(c.Query("createdBefore")); before != nil {
		criteria.CreatedBefore = before
	}
	return criteria
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}
