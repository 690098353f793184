package workshops

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"mechsathi/internal/assist"
)

type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)          // GET /workshops
	rg.GET("/nearby", h.nearby) // GET /workshops/nearby?lat=..&lng=..&radius=..
	rg.GET("/search", h.search) // GET /workshops/search?q=..
	rg.GET("/:id", h.getByID)   // GET /workshops/:id
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Repo.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total": len(items),
		"items": items,
	})
}

func (h *Handler) nearby(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng required"})
		return
	}
	radius := parseFloat(c.Query("radius"), 50)

	items, err := h.Repo.Nearby(c.Request.Context(), lat, lng, radius)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "nearby failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total": len(items),
		"items": items,
	})
}

func (h *Handler) search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q required"})
		return
	}

	items, err := h.Repo.Search(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query": q,
		"total": len(items),
		"items": items,
	})
}

func (h *Handler) getByID(c *gin.Context) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	w, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if w == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	// deep links the mobile client can hand straight to the OS
	links := gin.H{}
	if dial, err := assist.DialURL(w.Phone); err == nil {
		links["dial"] = dial
	}
	nav := assist.MapsURL(w.Latitude, w.Longitude, w.Name)
	links["maps"] = nav.Native
	links["maps_web"] = nav.Web

	c.JSON(http.StatusOK, gin.H{
		"workshop": w,
		"links":    links,
	})
}

func parseFloat(s string, def float64) float64 {
	if strings.TrimSpace(s) == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}
