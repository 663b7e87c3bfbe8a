package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/acadmx/tuition-service/internal/middleware"
	"github.com/acadmx/tuition-service/internal/period"
	"github.com/acadmx/tuition-service/internal/student"
)

// StudentDirectory resolves students for the ownership gate.
type StudentDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (student.Student, error)
}

// Handler exposes the period-status read.
type Handler struct {
	reconciler *Reconciler
	students   StudentDirectory
	log        *slog.Logger
}

func NewHandler(reconciler *Reconciler, students StudentDirectory, log *slog.Logger) *Handler {
	return &Handler{reconciler: reconciler, students: students, log: log}
}

func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/payments/status", h.status)
}

// status godoc
// @Summary Payment status for a student and period
// @Tags payments
// @Produce json
// @Success 200 {object} Status
// @Router /payments/status [get]
func (h *Handler) status(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	studentID, err := uuid.Parse(c.Query("student_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid student_id"})
		return
	}

	p := period.FromTime(time.Now())
	if raw := c.Query("month"); raw != "" {
		month, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
			return
		}
		p.Month = month
	}
	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
			return
		}
		p.Year = year
	}
	if !p.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be between 1 and 12"})
		return
	}

	st, err := h.students.GetByID(c.Request.Context(), studentID)
	if err != nil {
		if errors.Is(err, student.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
			return
		}
		h.log.Error("load student for status", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load student"})
		return
	}

	if !mayQuery(identity, st) {
		c.JSON(http.StatusForbidden, gin.H{"error": "you may not query this student's status"})
		return
	}

	status, err := h.reconciler.PeriodStatus(c.Request.Context(), studentID, p)
	if err != nil {
		h.log.Error("reconcile period status", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not resolve payment status"})
		return
	}

	c.JSON(http.StatusOK, status)
}

// Students may check themselves; teachers their own students.
func mayQuery(identity middleware.Identity, st student.Student) bool {
	switch identity.Role {
	case middleware.RoleAdmin:
		return true
	case middleware.RoleStudent:
		return identity.ID == st.ID
	default:
		return identity.ID == st.TeacherID
	}
}
