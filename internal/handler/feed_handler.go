package handler

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gigmatch/config"
	"gigmatch/internal/domain"
	"gigmatch/internal/middleware"
	"gigmatch/internal/models"
	"gigmatch/internal/repository"
	"gigmatch/internal/scoring"

	"github.com/gin-gonic/gin"
)

type FeedHandler struct {
	cfg        *config.DiscoveryConfig
	candidates *repository.CandidateRepository
	decisions  *repository.DecisionRepository
	userRepo   *repository.UserRepository
}

func NewFeedHandler(cfg *config.DiscoveryConfig, candidates *repository.CandidateRepository, decisions *repository.DecisionRepository, userRepo *repository.UserRepository) *FeedHandler {
	return &FeedHandler{cfg: cfg, candidates: candidates, decisions: decisions, userRepo: userRepo}
}

// Feed returns the scored discovery feed for the authenticated actor.
// Filters omitted from the query fall back to the actor's stored profile;
// an actor without coordinates gets a feed without geospatial filtering
// rather than an error.
func (h *FeedHandler) Feed(c *gin.Context) {
	actor, err := h.userRepo.GetByID(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown actor"})
		return
	}

	f := h.effectiveFilters(c, actor)
	limit, offset := h.pagination(c)

	excluded, err := h.decisions.DecidedTargetIDs(actor.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "feed failed"})
		return
	}
	candidates, total, err := h.candidates.FindCandidates(actor, f, excluded)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "feed failed"})
		return
	}

	now := time.Now()
	ranked := make([]scoring.Ranked, len(candidates))
	for i, cand := range candidates {
		in := scoring.Input{
			ActorGenres:       actor.GenreList(),
			TargetGenres:      cand.User.GenreList(),
			DistanceKm:        cand.DistanceKm,
			MaxTravelRadiusKm: f.RadiusKm,
			BudgetMinCents:    actor.PriceMinCents,
			BudgetMaxCents:    actor.PriceMaxCents,
			Reputation:        cand.User.Rating,
			Now:               now,
		}
		createdAt := cand.User.CreatedAt
		if cand.LatestGig != nil {
			in.RateCents = cand.LatestGig.BudgetCents
			t := cand.LatestGig.CreatedAt
			in.OpportunityCreatedAt = &t
			createdAt = t
		} else {
			in.RateCents = cand.User.PriceMinCents
			t := cand.User.CreatedAt
			in.OpportunityCreatedAt = &t
		}
		ranked[i] = scoring.Ranked{Index: i, Score: scoring.Score(in), CreatedAt: createdAt}
	}
	scoring.SortRanked(ranked)

	from := offset
	if from > len(ranked) {
		from = len(ranked)
	}
	to := from + limit
	if to > len(ranked) {
		to = len(ranked)
	}

	out := make([]gin.H, 0, to-from)
	for _, r := range ranked[from:to] {
		cand := candidates[r.Index]
		row := gin.H{
			"user_id":      cand.User.ID,
			"role":         cand.User.Role,
			"display_name": cand.User.DisplayName,
			"city":         cand.User.City,
			"avatar_url":   cand.User.AvatarURL,
			"genres":       cand.User.GenreList(),
			"rating":       cand.User.Rating,
			"score":        math.Round(r.Score*10) / 10,
		}
		if cand.DistanceKm >= 0 {
			row["distance_km"] = math.Round(cand.DistanceKm*10) / 10
		}
		if cand.LatestGig != nil {
			row["latest_gig"] = gin.H{
				"id":           cand.LatestGig.ID,
				"title":        cand.LatestGig.Title,
				"budget_cents": cand.LatestGig.BudgetCents,
				"event_date":   cand.LatestGig.EventDate,
			}
		}
		out = append(out, row)
	}
	c.JSON(http.StatusOK, gin.H{"results": out, "total": total})
}

// effectiveFilters merges query overrides over the actor's profile defaults.
func (h *FeedHandler) effectiveFilters(c *gin.Context, actor *models.User) repository.CandidateFilters {
	f := repository.CandidateFilters{
		Genres:   actor.GenreList(),
		RadiusKm: actor.SearchRadiusKm,
	}
	if f.RadiusKm <= 0 {
		f.RadiusKm = h.cfg.DefaultRadiusKm
	}
	if actor.HasCoordinates() {
		f.Latitude, f.Longitude = actor.Latitude, actor.Longitude
	}
	if actor.PriceMaxCents > 0 {
		min, max := actor.PriceMinCents, actor.PriceMaxCents
		f.BudgetMin, f.BudgetMax = &min, &max
	}

	if v := strings.TrimSpace(c.Query("genres")); v != "" {
		f.Genres = models.SplitCSV(v)
	}
	if lat, err1 := strconv.ParseFloat(c.Query("lat"), 64); err1 == nil {
		if lng, err2 := strconv.ParseFloat(c.Query("lng"), 64); err2 == nil {
			f.Latitude, f.Longitude = &lat, &lng
		}
	}
	if v := c.Query("radius_km"); v != "" {
		if r, err := strconv.ParseFloat(v, 64); err == nil && r > 0 {
			r = math.Min(r, h.cfg.MaxRadiusKm)
			// Overrides snap to the nearest radius option the UI offers.
			snapped := domain.SearchRadiusKm[0]
			for _, opt := range domain.SearchRadiusKm {
				if math.Abs(opt-r) < math.Abs(snapped-r) {
					snapped = opt
				}
			}
			f.RadiusKm = snapped
		}
	}
	if v := c.Query("budget_min"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			f.BudgetMin = &n
		}
	}
	if v := c.Query("budget_max"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			f.BudgetMax = &n
		}
	}
	if v := c.Query("date_from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			f.DateFrom = &t
		}
	}
	if v := c.Query("date_to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			f.DateTo = &t
		}
	}
	return f
}

func (h *FeedHandler) pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(h.cfg.PageSize)))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 {
		limit = h.cfg.PageSize
	}
	if limit > h.cfg.MaxPageSize {
		limit = h.cfg.MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
