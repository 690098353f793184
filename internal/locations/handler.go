package locations

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"mechsathi/internal/events"
	"mechsathi/internal/users"
)

type Handler struct {
	Repo *Repo
	Hub  *events.Hub
}

func NewHandler(repo *Repo, hub *events.Hub) *Handler {
	return &Handler{Repo: repo, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/locations", h.list)
	rg.POST("/locations", h.save)
	rg.DELETE("/locations/:id", h.remove)
}

type saveReq struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

func (h *Handler) save(c *gin.Context) {
	claims := users.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req saveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}

	id, err := h.Repo.Save(c.Request.Context(), claims.UserID, req.Name, req.Latitude, req.Longitude, req.Address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	if h.Hub != nil {
		ev := events.LocationEvent{
			Type:       events.TypeLocationSaved,
			UserID:     claims.UserID,
			LocationID: id,
			At:         time.Now().UTC(),
		}
		go h.Hub.BroadcastJSON(ev)
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) list(c *gin.Context) {
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

func (h *Handler) remove(c *gin.Context) {
	claims := users.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	ok, err := h.Repo.Delete(c.Request.Context(), id, claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if h.Hub != nil {
		ev := events.LocationEvent{
			Type:       events.TypeLocationDeleted,
			UserID:     claims.UserID,
			LocationID: id,
			At:         time.Now().UTC(),
		}
		go h.Hub.BroadcastJSON(ev)
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
