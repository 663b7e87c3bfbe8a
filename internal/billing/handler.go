package billing

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/acadmx/tuition-service/internal/middleware"
	"github.com/acadmx/tuition-service/internal/student"
)

// StudentDirectory resolves students for the checkout ownership gate.
type StudentDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (student.Student, error)
}

// Handler exposes the checkout and subscription-overview endpoints.
type Handler struct {
	client   *Client
	students StudentDirectory
	log      *slog.Logger
}

func NewHandler(client *Client, students StudentDirectory, log *slog.Logger) *Handler {
	return &Handler{client: client, students: students, log: log}
}

func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/checkout", h.checkout)
	group.GET("/subscriptions", h.listSubscriptions)
}

type checkoutRequest struct {
	StudentID string `json:"student_id" binding:"required"`
}

// checkout godoc
// @Summary Start a recurring tuition checkout
// @Tags billing
// @Accept json
// @Produce json
// @Router /checkout [post]
func (h *Handler) checkout(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid student_id"})
		return
	}

	st, err := h.students.GetByID(c.Request.Context(), studentID)
	if err != nil {
		if errors.Is(err, student.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
			return
		}
		h.log.Error("load student for checkout", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load student"})
		return
	}

	allowed := identity.Role == middleware.RoleAdmin ||
		(identity.Role == middleware.RoleStudent && identity.ID == st.ID) ||
		(identity.Role == middleware.RoleTeacher && identity.ID == st.TeacherID)
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "you may not start a checkout for this student"})
		return
	}

	url, err := h.client.CreateCheckoutSession(c.Request.Context(), st.ID, st.FullName)
	if err != nil {
		h.log.Error("create checkout session", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "billing provider unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// listSubscriptions godoc
// @Summary List current provider subscriptions
// @Tags billing
// @Produce json
// @Router /subscriptions [get]
func (h *Handler) listSubscriptions(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	if identity.Role != middleware.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
		return
	}

	snapshots, err := h.client.ListSubscriptions(c.Request.Context())
	if err != nil {
		h.log.Error("list subscriptions", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "billing provider unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subscriptions": snapshots,
		"total":         len(snapshots),
	})
}
