package handler

import (
	"fmt"
	"net/http"
	"time"

	"gigmatch/internal/apperr"
	"gigmatch/internal/middleware"
	"gigmatch/internal/repository"
	"gigmatch/internal/service"
	"gigmatch/pkg/cloudinary"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	bookingSvc *service.BookingService
	bookings   *repository.BookingRepository
	cloud      cloudinary.Client
}

func NewBookingHandler(bookingSvc *service.BookingService, bookings *repository.BookingRepository, cloud cloudinary.Client) *BookingHandler {
	return &BookingHandler{bookingSvc: bookingSvc, bookings: bookings, cloud: cloud}
}

func (h *BookingHandler) List(c *gin.Context) {
	limit, offset := listParams(c)
	list, err := h.bookings.ListForUser(middleware.GetUserID(c), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list})
}

func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	b, err := h.bookings.GetByID(id)
	if err != nil {
		fail(c, apperr.NotFound("booking_not_found", "booking does not exist"))
		return
	}
	if !b.HasParty(middleware.GetUserID(c)) {
		fail(c, apperr.Forbidden("not_booking_party", "actor is not a party to this booking"))
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) Confirm(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	b, err := h.bookingSvc.Confirm(middleware.GetUserID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.bookingSvc.Cancel(middleware.GetUserID(c), id, req.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) Complete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	b, err := h.bookingSvc.Complete(middleware.GetUserID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) CreateDepositIntent(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	b, intent, err := h.bookingSvc.CreateDepositIntent(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"booking":       b,
		"intent_id":     intent.ID,
		"client_secret": intent.ClientSecret,
	})
}

func (h *BookingHandler) ConfirmDeposit(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		IntentID string `json:"intent_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.bookingSvc.ConfirmDeposit(middleware.GetUserID(c), id, req.IntentID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) CreateFinalIntent(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	b, intent, err := h.bookingSvc.CreateFinalIntent(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"booking":       b,
		"intent_id":     intent.ID,
		"client_secret": intent.ClientSecret,
	})
}

func (h *BookingHandler) ConfirmFinal(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		IntentID string `json:"intent_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.bookingSvc.ConfirmFinal(middleware.GetUserID(c), id, req.IntentID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// UploadContract stores the contract document and attaches its URL.
func (h *BookingHandler) UploadContract(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	// Party check comes before the file touches storage.
	b, err := h.bookings.GetByID(id)
	if err != nil {
		fail(c, apperr.NotFound("booking_not_found", "booking does not exist"))
		return
	}
	if !b.HasParty(middleware.GetUserID(c)) {
		fail(c, apperr.Forbidden("not_booking_party", "actor is not a party to this booking"))
		return
	}
	if h.cloud == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "uploads not configured"})
		return
	}
	fileHeader, err := c.FormFile("contract")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "contract file required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
		return
	}
	defer file.Close()

	publicID := fmt.Sprintf("booking_%d_%d", id, time.Now().Unix())
	url, err := h.cloud.UploadDocument(c.Request.Context(), file, "contracts", publicID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	b, err = h.bookingSvc.AttachContract(middleware.GetUserID(c), id, url)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) SignContract(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	b, err := h.bookingSvc.SignContract(middleware.GetUserID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
