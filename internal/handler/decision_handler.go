package handler

import (
	"net/http"
	"strconv"

	"gigmatch/internal/middleware"
	"gigmatch/internal/repository"
	"gigmatch/internal/service"

	"github.com/gin-gonic/gin"
)

type DecisionHandler struct {
	decisionSvc *service.DecisionService
	decisions   *repository.DecisionRepository
	userRepo    *repository.UserRepository
}

func NewDecisionHandler(decisionSvc *service.DecisionService, decisions *repository.DecisionRepository, userRepo *repository.UserRepository) *DecisionHandler {
	return &DecisionHandler{decisionSvc: decisionSvc, decisions: decisions, userRepo: userRepo}
}

// List returns the actor's own swipe history, newest first.
func (h *DecisionHandler) List(c *gin.Context) {
	limit, offset := listParams(c)
	list, err := h.decisions.ListByActor(middleware.GetUserID(c), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"decisions": list})
}

// Create records a swipe. Responds with the ledger row and, when this swipe
// completed a reciprocal pair, the freshly materialized match.
func (h *DecisionHandler) Create(c *gin.Context) {
	var req struct {
		TargetID  uint   `json:"target_id" binding:"required"`
		Direction string `json:"direction" binding:"required,oneof=LIKE PASS SUPERLIKE"`
		GigID     *uint  `json:"gig_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	actor, err := h.userRepo.GetByID(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown actor"})
		return
	}
	res, err := h.decisionSvc.Record(actor, req.TargetID, req.Direction, req.GigID)
	if err != nil {
		fail(c, err)
		return
	}
	body := gin.H{"decision": res.Decision}
	if res.Match != nil {
		body["match"] = res.Match
	}
	c.JSON(http.StatusCreated, body)
}

// Undo deletes the actor's own decision within the undo window.
func (h *DecisionHandler) Undo(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid decision id"})
		return
	}
	if err := h.decisionSvc.Undo(middleware.GetUserID(c), uint(id)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"undone": true})
}
