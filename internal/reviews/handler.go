package reviews

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"mechsathi/internal/events"
	"mechsathi/internal/notify"
	"mechsathi/internal/users"
)

type Handler struct {
	Repo     *Repo
	Hub      *events.Hub
	Notifier *notify.Server
}

func NewHandler(repo *Repo, hub *events.Hub, notifier *notify.Server) *Handler {
	return &Handler{Repo: repo, Hub: hub, Notifier: notifier}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/workshops/:id/reviews", h.listByWorkshop)
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/reviews", h.create)
	rg.GET("/reviews", h.listMine)
}

type createReq struct {
	WorkshopID int64  `json:"workshop_id"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
}

func (h *Handler) create(c *gin.Context) {
	claims := users.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if req.WorkshopID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workshop_id required"})
		return
	}

	id, newRating, err := h.Repo.Add(c.Request.Context(), claims.UserID, req.WorkshopID, req.Rating, strings.TrimSpace(req.Comment))
	if err != nil {
		if errors.Is(err, ErrRatingOutOfRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 5"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}

	if h.Hub != nil {
		now := time.Now().UTC()
		ev := events.ReviewEvent{
			Type:           events.TypeReviewAdded,
			WorkshopID:     req.WorkshopID,
			UserID:         claims.UserID,
			Rating:         req.Rating,
			WorkshopRating: newRating,
			At:             now,
		}
		rev := events.RatingEvent{
			Type:       events.TypeRatingUpdated,
			WorkshopID: req.WorkshopID,
			Rating:     newRating,
			At:         now,
		}
		go func() {
			h.Hub.BroadcastJSON(ev)
			h.Hub.BroadcastJSON(rev)
		}()
	}
	if h.Notifier != nil {
		go h.Notifier.BroadcastRatingUpdate(req.WorkshopID, newRating)
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":              id,
		"workshop_id":     req.WorkshopID,
		"workshop_rating": newRating,
	})
}

func (h *Handler) listByWorkshop(c *gin.Context) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid workshop id"})
		return
	}

	items, err := h.Repo.ListByWorkshop(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"workshop_id": id,
		"total":       len(items),
		"items":       items,
	})
}

func (h *Handler) listMine(c *gin.Context) {
	claims := users.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	items, err := h.Repo.ListByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total": len(items),
		"items": items,
	})
}
