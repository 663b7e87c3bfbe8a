package payment

import (
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

const layoutFullDate = "2006-01-02"

// Handler exposes HTTP handlers for the payment ledger.
type Handler struct {
	svc Service
	log *slog.Logger
}

func NewHandler(svc Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	payments := group.Group("/payments")
	payments.POST("", h.record)
	payments.GET("", h.list)
	payments.GET("/summary", h.summary)
	payments.DELETE("/:id", h.delete)
}

type recordPaymentRequest struct {
	StudentID string  `json:"student_id" binding:"required"`
	Month     int     `json:"period_month" binding:"required,min=1,max=12"`
	Year      int     `json:"period_year" binding:"required,min=2000"`
	PaidOn    string  `json:"paid_on"`
	Amount    float64 `json:"amount" binding:"min=0"`
	Method    string  `json:"method" binding:"required,oneof=cash transfer card other"`
	Note      *string `json:"note"`
}

// record godoc
// @Summary Record a tuition payment for one month
// @Tags payments
// @Accept json
// @Produce json
// @Success 201 {object} Payment
// @Router /payments [post]
func (h *Handler) record(c *gin.Context) {
	identity, ok := requireTeacher(c)
	if !ok {
		return
	}

	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid student_id"})
		return
	}

	paidOn := time.Now()
	if req.PaidOn != "" {
		paidOn, err = time.Parse(layoutFullDate, req.PaidOn)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "paid_on must be YYYY-MM-DD"})
			return
		}
	}

	p, err := h.svc.Record(c.Request.Context(), identity.ID, CreateParams{
		StudentID: studentID,
		Period:    period.Period{Year: req.Year, Month: req.Month},
		PaidOn:    paidOn,
		Amount:    req.Amount,
		Method:    Method(req.Method),
		Note:      req.Note,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (h *Handler) list(c *gin.Context) {
	identity, ok := requireTeacher(c)
	if !ok {
		return
	}

	filter := ListFilter{TeacherID: identity.ID}

	if raw := c.Query("student_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid student_id"})
			return
		}
		filter.StudentID = &id
	}
	var ok2 bool
	if filter.Month, ok2 = intQuery(c, "month", 1, 12); !ok2 {
		return
	}
	if filter.Year, ok2 = intQuery(c, "year", 2000, 9999); !ok2 {
		return
	}

	payments, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, payments)
}

func (h *Handler) summary(c *gin.Context) {
	identity, ok := requireTeacher(c)
	if !ok {
		return
	}

	filter := ListFilter{TeacherID: identity.ID}

	if raw := c.Query("student_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid student_id"})
			return
		}
		filter.StudentID = &id
	}
	var ok2 bool
	if filter.Month, ok2 = intQuery(c, "month", 1, 12); !ok2 {
		return
	}
	if filter.Year, ok2 = intQuery(c, "year", 2000, 9999); !ok2 {
		return
	}

	total, err := h.svc.SumAmount(c.Request.Context(), filter)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"total": total})
}

func (h *Handler) delete(c *gin.Context) {
	identity, ok := requireTeacher(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), identity.ID, id); err != nil {
		h.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// writeError maps domain errors to HTTP responses. Validation rejections
// carry the offending period so the client can point at the exact month.
func (h *Handler) writeError(c *gin.Context, err error) {
	var (
		before  *BeforeEnrollmentError
		already *AlreadyPaidError
		gap     *GapError
		later   *LaterPaymentError
	)

	switch {
	case errors.As(err, &before):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             before.Error(),
			"validation_failed": true,
		})
	case errors.As(err, &already):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             already.Error(),
			"validation_failed": true,
		})
	case errors.As(err, &gap):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             gap.Error(),
			"validation_failed": true,
			"missing_period":    gin.H{"month": gap.Missing.Month, "year": gap.Missing.Year},
		})
	case errors.As(err, &later):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":       later.Error(),
			"next_period": gin.H{"month": later.Next.Month, "year": later.Next.Year},
		})
	case errors.Is(err, ErrInvalidPeriod):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "you do not own this student's payments"})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
	case errors.Is(err, student.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
	default:
		h.log.Error("payment operation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func intQuery(c *gin.Context, name string, min, max int) (*int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < min || value > max {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return nil, false
	}
	return &value, true
}

func requireTeacher(c *gin.Context) (middleware.Identity, bool) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return middleware.Identity{}, false
	}
	if identity.Role != middleware.RoleTeacher && identity.Role != middleware.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "teacher role required"})
		return middleware.Identity{}, false
	}
	return identity, true
}
