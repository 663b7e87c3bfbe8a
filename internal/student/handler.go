package student

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

const layoutFullDate = "2006-01-02"

// Handler exposes HTTP handlers for student resources.
type Handler struct {
	repo *Repository
	log  *slog.Logger
}

func NewHandler(repo *Repository, log *slog.Logger) *Handler {
	return &Handler{repo: repo, log: log}
}

func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	students := group.Group("/students")
	students.POST("", h.create)
	students.GET("", h.list)
	students.GET("/:id", h.getByID)
	students.PATCH("/:id", h.update)
	students.DELETE("/:id", h.deactivate)
}

type createStudentRequest struct {
	FullName      string  `json:"full_name" binding:"required"`
	GuardianName  string  `json:"guardian_name"`
	GuardianPhone string  `json:"guardian_phone"`
	MonthlyFee    float64 `json:"monthly_fee" binding:"min=0"`
	EnrolledAt    string  `json:"enrolled_at" binding:"required"`
	PayDay        int     `json:"pay_day" binding:"omitempty,min=1,max=31"`
}

// create godoc
// @Summary Enroll a new student
// @Tags students
// @Accept json
// @Produce json
// @Success 201 {object} Student
// @Router /students [post]
func (h *Handler) create(c *gin.Context) {
	identity, ok := requireTeacher(c)
	if !ok {
		return
	}

	var req createStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	enrolledAt, err := time.Parse(layoutFullDate, req.EnrolledAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "enrolled_at must be YYYY-MM-DD"})
		return
	}

	payDay := req.PayDay
	if payDay == 0 {
		payDay = 1
	}

	st, err := h.repo.Create(c.Request.Context(), CreateParams{
		TeacherID:     identity.ID,
		FullName:      strings.TrimSpace(req.FullName),
		GuardianName:  strings.TrimSpace(req.GuardianName),
		GuardianPhone: strings.TrimSpace(req.GuardianPhone),
		MonthlyFee:    req.MonthlyFee,
		EnrolledAt:    enrolledAt,
		PayDay:        payDay,
	})
	if err != nil {
		h.log.Error("create student", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create student"})
		return
	}

	c.JSON(http.StatusCreated, st)
}

func (h *Handler) list(c *gin.Context) {
	identity, ok := requireTeacher(c)
	if !ok {
		return
	}

	activeOnly := c.Query("active") == "true"

	students, err := h.repo.ListByTeacher(c.Request.Context(), identity.ID, activeOnly)
	if err != nil {
		h.log.Error("list students", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list students"})
		return
	}

	c.JSON(http.StatusOK, students)
}

func (h *Handler) getByID(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	st, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
			return
		}
		h.log.Error("get student", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load student"})
		return
	}

	// Students may read their own record; teachers only their own students.
	if !canAccess(identity, st) {
		c.JSON(http.StatusForbidden, gin.H{"error": "you do not own this student"})
		return
	}

	c.JSON(http.StatusOK, st)
}

type updateStudentRequest struct {
	FullName      *string  `json:"full_name"`
	GuardianName  *string  `json:"guardian_name"`
	GuardianPhone *string  `json:"guardian_phone"`
	MonthlyFee    *float64 `json:"monthly_fee"`
	PayDay        *int     `json:"pay_day"`
	Active        *bool    `json:"active"`
}

func (h *Handler) update(c *gin.Context) {
	identity, ok := requireTeacher(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req updateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.MonthlyFee != nil && *req.MonthlyFee < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "monthly_fee cannot be negative"})
		return
	}
	if req.PayDay != nil && (*req.PayDay < 1 || *req.PayDay > 31) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pay_day must be between 1 and 31"})
		return
	}

	if !h.ownsStudent(c, identity.ID, id) {
		return
	}

	st, err := h.repo.Update(c.Request.Context(), UpdateParams{
		ID:            id,
		FullName:      req.FullName,
		GuardianName:  req.GuardianName,
		GuardianPhone: req.GuardianPhone,
		MonthlyFee:    req.MonthlyFee,
		PayDay:        req.PayDay,
		Active:        req.Active,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
			return
		}
		h.log.Error("update student", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update student"})
		return
	}

	c.JSON(http.StatusOK, st)
}

func (h *Handler) deactivate(c *gin.Context) {
	identity, ok := requireTeacher(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if !h.ownsStudent(c, identity.ID, id) {
		return
	}

	if err := h.repo.Deactivate(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
			return
		}
		h.log.Error("deactivate student", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not deactivate student"})
		return
	}

	c.Status(http.StatusNoContent)
}

// ownsStudent loads the target student and enforces teacher ownership,
// writing the error response itself when the check fails.
func (h *Handler) ownsStudent(c *gin.Context, teacherID, studentID uuid.UUID) bool {
	st, err := h.repo.GetByID(c.Request.Context(), studentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
			return false
		}
		h.log.Error("load student for ownership check", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load student"})
		return false
	}
	if st.TeacherID != teacherID {
		c.JSON(http.StatusForbidden, gin.H{"error": "you do not own this student"})
		return false
	}
	return true
}

func canAccess(identity middleware.Identity, st Student) bool {
	switch identity.Role {
	case middleware.RoleAdmin:
		return true
	case middleware.RoleStudent:
		return identity.ID == st.ID
	default:
		return identity.ID == st.TeacherID
	}
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
