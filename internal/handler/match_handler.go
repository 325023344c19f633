package handler

import (
	"net/http"
	"time"

	"gigmatch/internal/middleware"
	"gigmatch/internal/repository"
	"gigmatch/internal/service"

	"github.com/gin-gonic/gin"
)

type MatchHandler struct {
	matches    *repository.MatchRepository
	bookingSvc *service.BookingService
}

func NewMatchHandler(matches *repository.MatchRepository, bookingSvc *service.BookingService) *MatchHandler {
	return &MatchHandler{matches: matches, bookingSvc: bookingSvc}
}

func (h *MatchHandler) List(c *gin.Context) {
	limit, offset := listParams(c)
	list, err := h.matches.ListForUser(middleware.GetUserID(c), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": list})
}

// Book converts an active match into a booking.
func (h *MatchHandler) Book(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		AgreedAmountCents int64     `json:"agreed_amount_cents" binding:"required,gt=0"`
		Currency          string    `json:"currency"`
		ScheduledAt       time.Time `json:"scheduled_at" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.bookingSvc.CreateFromMatch(middleware.GetUserID(c), id, req.AgreedAmountCents, req.Currency, req.ScheduledAt)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}
