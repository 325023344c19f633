package handler

import (
	"net/http"
	"strconv"
	"time"

	"gigmatch/internal/apperr"
	"gigmatch/internal/domain"
	"gigmatch/internal/middleware"
	"gigmatch/internal/models"
	"gigmatch/internal/repository"
	"gigmatch/internal/service"

	"github.com/gin-gonic/gin"
)

type GigHandler struct {
	gigs       *repository.GigRepository
	bookingSvc *service.BookingService
	userRepo   *repository.UserRepository
	notifSvc   *service.NotificationService
}

func NewGigHandler(gigs *repository.GigRepository, bookingSvc *service.BookingService, userRepo *repository.UserRepository, notifSvc *service.NotificationService) *GigHandler {
	return &GigHandler{gigs: gigs, bookingSvc: bookingSvc, userRepo: userRepo, notifSvc: notifSvc}
}

func (h *GigHandler) Create(c *gin.Context) {
	var req struct {
		Title              string    `json:"title" binding:"required,max=255"`
		Description        string    `json:"description"`
		Genres             string    `json:"genres"`
		City               string    `json:"city"`
		Latitude           *float64  `json:"latitude"`
		Longitude          *float64  `json:"longitude"`
		BudgetCents        int64     `json:"budget_cents" binding:"required,gt=0"`
		Currency           string    `json:"currency"`
		DepositPercent     int       `json:"deposit_percent"`
		EventDate          time.Time `json:"event_date" binding:"required"`
		RequiredPerformers int       `json:"required_performers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	g := &models.Gig{
		VenueID:            middleware.GetUserID(c),
		Title:              req.Title,
		Description:        req.Description,
		Genres:             req.Genres,
		City:               req.City,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		BudgetCents:        req.BudgetCents,
		Currency:           req.Currency,
		DepositPercent:     req.DepositPercent,
		EventDate:          req.EventDate,
		RequiredPerformers: req.RequiredPerformers,
		Status:             domain.GigStatusOpen,
	}
	if g.Currency == "" {
		g.Currency = "USD"
	}
	if g.DepositPercent <= 0 || g.DepositPercent > 100 {
		g.DepositPercent = 25
	}
	if g.RequiredPerformers <= 0 {
		g.RequiredPerformers = 1
	}
	if err := h.gigs.Create(g); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, g)
}

func (h *GigHandler) List(c *gin.Context) {
	limit, offset := listParams(c)
	var (
		list []models.Gig
		err  error
	)
	if middleware.GetRole(c) == domain.RoleVenue {
		list, err = h.gigs.ListByVenue(middleware.GetUserID(c), limit, offset)
	} else {
		list, err = h.gigs.ListOpen(limit, offset)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"gigs": list})
}

func (h *GigHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	g, err := h.gigs.GetByID(id)
	if err != nil {
		fail(c, apperr.NotFound("gig_not_found", "gig does not exist"))
		return
	}
	c.JSON(http.StatusOK, g)
}

// Apply files a performer's application. The composite uniqueness index
// rejects a second live application for the same gig.
func (h *GigHandler) Apply(c *gin.Context) {
	gigID, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		ProposedRateCents int64  `json:"proposed_rate_cents"`
		Message           string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	g, err := h.gigs.GetByID(gigID)
	if err != nil {
		fail(c, apperr.NotFound("gig_not_found", "gig does not exist"))
		return
	}
	if !g.IsOpen() {
		fail(c, apperr.InvalidState("gig_closed", "gig is not accepting applications"))
		return
	}

	applicantID := middleware.GetUserID(c)
	live := true
	a := &models.Application{
		GigID:             g.ID,
		ApplicantID:       applicantID,
		Live:              &live,
		ProposedRateCents: req.ProposedRateCents,
		Message:           req.Message,
		Status:            domain.ApplicationStatusPending,
		AppliedAt:         time.Now(),
	}
	if err := h.gigs.CreateApplication(a); err != nil {
		if repository.IsDuplicateKey(err) {
			fail(c, apperr.Conflict("application_exists", "an application for this gig already exists"))
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "apply failed"})
		return
	}
	if applicant, aerr := h.userRepo.GetByID(applicantID); aerr == nil {
		h.notifSvc.NotifyApplicationReceived(g.VenueID, g.ID, a.ID, applicant.DisplayName)
	}
	c.JSON(http.StatusCreated, a)
}

func (h *GigHandler) ListApplications(c *gin.Context) {
	gigID, ok := idParam(c)
	if !ok {
		return
	}
	g, err := h.gigs.GetByID(gigID)
	if err != nil {
		fail(c, apperr.NotFound("gig_not_found", "gig does not exist"))
		return
	}
	if g.VenueID != middleware.GetUserID(c) {
		fail(c, apperr.Forbidden("not_gig_owner", "only the gig's venue may list applications"))
		return
	}
	limit, offset := listParams(c)
	list, err := h.gigs.ListApplicationsByGig(gigID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": list})
}

func (h *GigHandler) ListMyApplications(c *gin.Context) {
	limit, offset := listParams(c)
	list, err := h.gigs.ListApplicationsByApplicant(middleware.GetUserID(c), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": list})
}

// Withdraw lets the applicant pull a pending application, freeing the
// uniqueness slot for a later re-apply.
func (h *GigHandler) Withdraw(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	a, err := h.gigs.GetApplicationByID(id)
	if err != nil {
		fail(c, apperr.NotFound("application_not_found", "application does not exist"))
		return
	}
	if a.ApplicantID != middleware.GetUserID(c) {
		fail(c, apperr.Forbidden("not_applicant", "only the applicant may withdraw"))
		return
	}
	done, err := h.gigs.WithdrawApplication(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "withdraw failed"})
		return
	}
	if !done {
		fail(c, apperr.InvalidState("application_not_pending", "application is not pending"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawn": true})
}

func (h *GigHandler) Reject(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	a, err := h.gigs.GetApplicationByID(id)
	if err != nil {
		fail(c, apperr.NotFound("application_not_found", "application does not exist"))
		return
	}
	if a.Gig.VenueID != middleware.GetUserID(c) {
		fail(c, apperr.Forbidden("not_gig_owner", "only the gig's venue may reject applications"))
		return
	}
	done, err := h.gigs.RejectApplication(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reject failed"})
		return
	}
	if !done {
		fail(c, apperr.InvalidState("application_not_pending", "application is not pending"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"rejected": true})
}

// Accept promotes the application into a booking via the transactional
// acceptance step.
func (h *GigHandler) Accept(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		AgreedAmountCents int64     `json:"agreed_amount_cents"`
		ScheduledAt       time.Time `json:"scheduled_at"`
	}
	// Terms are optional; an empty body accepts at the gig's budget and date.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	booking, err := h.bookingSvc.AcceptApplication(middleware.GetUserID(c), id, service.AcceptRequest{
		AgreedAmountCents: req.AgreedAmountCents,
		ScheduledAt:       req.ScheduledAt,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func listParams(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
