package schedule

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/acadmx/tuition-service/internal/middleware"
)

const layoutClock = "15:04"

// Lessons default to two hours when no end time is given.
const defaultSlotLength = 2 * time.Hour

// Handler exposes HTTP handlers for schedule slots.
type Handler struct {
	repo *Repository
	log  *slog.Logger
}

func NewHandler(repo *Repository, log *slog.Logger) *Handler {
	return &Handler{repo: repo, log: log}
}

func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	slots := group.Group("/schedules")
	slots.POST("", h.create)
	slots.GET("", h.list)
	slots.PATCH("/:id", h.update)
	slots.DELETE("/:id", h.delete)
}

type createSlotRequest struct {
	Weekday   int    `json:"weekday" binding:"required,min=1,max=7"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time"`
	Branch    string `json:"branch" binding:"required"`
}

func (h *Handler) create(c *gin.Context) {
	if !requireTeacher(c) {
		return
	}

	var req createSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, err := time.Parse(layoutClock, req.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_time must be HH:MM"})
		return
	}

	end := req.EndTime
	if end == "" {
		end = start.Add(defaultSlotLength).Format(layoutClock)
	} else {
		parsedEnd, err := time.Parse(layoutClock, end)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end_time must be HH:MM"})
			return
		}
		if !parsedEnd.After(start) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end_time must be after start_time"})
			return
		}
	}

	slot, err := h.repo.Create(c.Request.Context(), CreateParams{
		Weekday:   req.Weekday,
		StartTime: start.Format(layoutClock),
		EndTime:   end,
		Branch:    strings.TrimSpace(req.Branch),
	})
	if err != nil {
		h.log.Error("create slot", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create slot"})
		return
	}

	c.JSON(http.StatusCreated, slot)
}

func (h *Handler) list(c *gin.Context) {
	if _, ok := middleware.IdentityFrom(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	slots, err := h.repo.List(c.Request.Context(), strings.TrimSpace(c.Query("branch")))
	if err != nil {
		h.log.Error("list slots", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list slots"})
		return
	}

	c.JSON(http.StatusOK, slots)
}

type updateSlotRequest struct {
	Weekday   *int    `json:"weekday"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	Branch    *string `json:"branch"`
}

func (h *Handler) update(c *gin.Context) {
	if !requireTeacher(c) {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req updateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Weekday != nil && (*req.Weekday < 1 || *req.Weekday > 7) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "weekday must be between 1 and 7"})
		return
	}
	for _, clock := range []*string{req.StartTime, req.EndTime} {
		if clock == nil {
			continue
		}
		if _, err := time.Parse(layoutClock, *clock); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "times must be HH:MM"})
			return
		}
	}

	slot, err := h.repo.Update(c.Request.Context(), UpdateParams{
		ID:        id,
		Weekday:   req.Weekday,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Branch:    req.Branch,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "slot not found"})
			return
		}
		h.log.Error("update slot", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update slot"})
		return
	}

	c.JSON(http.StatusOK, slot)
}

func (h *Handler) delete(c *gin.Context) {
	if !requireTeacher(c) {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "slot not found"})
			return
		}
		h.log.Error("delete slot", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete slot"})
		return
	}

	c.Status(http.StatusNoContent)
}

func requireTeacher(c *gin.Context) bool {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return false
	}
	if identity.Role != middleware.RoleTeacher && identity.Role != middleware.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "teacher role required"})
		return false
	}
	return true
}
