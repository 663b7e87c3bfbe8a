package report

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/acadmx/tuition-service/internal/middleware"
	"github.com/acadmx/tuition-service/internal/period"
)

// Handler exposes the dashboard read endpoints.
type Handler struct {
	repo *Repository
	log  *slog.Logger
}

func NewHandler(repo *Repository, log *slog.Logger) *Handler {
	return &Handler{repo: repo, log: log}
}

func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	reports := group.Group("/reports")
	reports.GET("/month-status", h.monthStatus)
	reports.GET("/metrics", h.metrics)
}

func (h *Handler) monthStatus(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	if identity.Role != middleware.RoleTeacher && identity.Role != middleware.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "teacher role required"})
		return
	}

	p, ok := periodFromQuery(c)
	if !ok {
		return
	}

	status, err := h.repo.MonthStatus(c.Request.Context(), identity.ID, p)
	if err != nil {
		h.log.Error("month status", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not build month status"})
		return
	}

	c.JSON(http.StatusOK, status)
}

func (h *Handler) metrics(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	if identity.Role != middleware.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
		return
	}

	p, ok := periodFromQuery(c)
	if !ok {
		return
	}

	metrics, err := h.repo.Metrics(c.Request.Context(), p)
	if err != nil {
		h.log.Error("metrics", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not build metrics"})
		return
	}

	c.JSON(http.StatusOK, metrics)
}

// periodFromQuery reads optional month/year parameters, defaulting to the
// current period.
func periodFromQuery(c *gin.Context) (period.Period, bool) {
	p := period.FromTime(time.Now())
	if raw := c.Query("month"); raw != "" {
		month, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
			return period.Period{}, false
		}
		p.Month = month
	}
	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
			return period.Period{}, false
		}
		p.Year = year
	}
	if !p.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be between 1 and 12"})
		return period.Period{}, false
	}
	return p, true
}
