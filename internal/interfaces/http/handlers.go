package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/surat-menyurat/internal/application/service"
	"github.com/garyjia/surat-menyurat/internal/domain/apperr"
	"github.com/garyjia/surat-menyurat/internal/domain/entity"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	svc    Services
	logger Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, logger Logger) *Handlers {
	return &Handlers{svc: services, logger: logger}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileRequest struct {
	Name string `json:"name"`
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

// bind decodes the JSON body; an empty body leaves dst untouched.
func bind(c *gin.Context, dst interface{}) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperr.Validationf("invalid request body")
	}
	return nil
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	respond(c, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	})
}

// Setup handles GET /api/setup
func (h *Handlers) Setup(c *gin.Context) {
	if h.svc.Setup == nil {
		respond(c, http.StatusOK, gin.H{"message": "nothing to set up"})
		return
	}
	if err := h.svc.Setup(c.Request.Context()); err != nil {
		h.fail(c, "setup", err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Spreadsheet siap digunakan"})
}

// Login handles POST /api/login
func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, "login", err)
		return
	}
	res, err := h.svc.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, "login", err)
		return
	}
	respond(c, http.StatusOK, res)
}

// Register handles POST /api/register
func (h *Handlers) Register(c *gin.Context) {
	var req service.RegisterInput
	if err := bind(c, &req); err != nil {
		h.fail(c, "register", err)
		return
	}
	user, err := h.svc.Auth.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "register", err)
		return
	}
	respond(c, http.StatusCreated, user)
}

func (h *Handlers) GetMe(c *gin.Context) {
	actor := actorFrom(c)
	if actor.IsAdmin() || actor == guestActor {
		respond(c, http.StatusOK, actor)
		return
	}
	user, err := h.svc.Users.Get(c.Request.Context(), actor.ID)
	if err != nil {
		h.fail(c, "get me", err)
		return
	}
	respond(c, http.StatusOK, user)
}

func (h *Handlers) UpdateMe(c *gin.Context) {
	var req profileRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, "update me", err)
		return
	}
	user, err := h.svc.Users.UpdateProfile(c.Request.Context(), actorFrom(c).ID, req.Name)
	if err != nil {
		h.fail(c, "update me", err)
		return
	}
	respond(c, http.StatusOK, user)
}

func (h *Handlers) ListUsers(c *gin.Context) {
	users, err := h.svc.Users.List(c.Request.Context())
	respondList(h, c, "list users", users, err)
}

func (h *Handlers) UpdateUser(c *gin.Context) {
	var patch service.UserPatch
	if err := bind(c, &patch); err != nil {
		h.fail(c, "update user", err)
		return
	}
	user, err := h.svc.Users.AdminUpdate(c.Request.Context(), actorFrom(c), c.Param("id"), patch)
	if err != nil {
		h.fail(c, "update user", err)
		return
	}
	respond(c, http.StatusOK, user)
}

func (h *Handlers) ListPeriods(c *gin.Context) {
	periods, err := h.svc.Periods.List(c.Request.Context())
	respondList(h, c, "list periods", periods, err)
}

func (h *Handlers) CreatePeriod(c *gin.Context) {
	var in service.PeriodInput
	if err := bind(c, &in); err != nil {
		h.fail(c, "create period", err)
		return
	}
	period, err := h.svc.Periods.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "create period", err)
		return
	}
	respond(c, http.StatusCreated, period)
}

func (h *Handlers) UpdatePeriod(c *gin.Context) {
	var patch service.PeriodPatch
	if err := bind(c, &patch); err != nil {
		h.fail(c, "update period", err)
		return
	}
	period, err := h.svc.Periods.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.fail(c, "update period", err)
		return
	}
	respond(c, http.StatusOK, period)
}

func (h *Handlers) ListDepartments(c *gin.Context) {
	depts, err := h.svc.Departments.List(c.Request.Context(), c.Query("periodId"))
	respondList(h, c, "list departments", depts, err)
}

func (h *Handlers) CreateDepartment(c *gin.Context) {
	var in service.DepartmentInput
	if err := bind(c, &in); err != nil {
		h.fail(c, "create department", err)
		return
	}
	dept, err := h.svc.Departments.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "create department", err)
		return
	}
	respond(c, http.StatusCreated, dept)
}

func (h *Handlers) UpdateDepartment(c *gin.Context) {
	var patch service.DepartmentPatch
	if err := bind(c, &patch); err != nil {
		h.fail(c, "update department", err)
		return
	}
	dept, err := h.svc.Departments.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.fail(c, "update department", err)
		return
	}
	respond(c, http.StatusOK, dept)
}

func (h *Handlers) DeleteDepartment(c *gin.Context) {
	if err := h.svc.Departments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, "delete department", err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": c.Param("id")})
}

// ListMembers handles GET /api/members?periodId=current|<id>
func (h *Handlers) ListMembers(c *gin.Context) {
	members, err := h.svc.Members.List(c.Request.Context(), c.Query("periodId"))
	respondList(h, c, "list members", members, err)
}

func (h *Handlers) CreateMember(c *gin.Context) {
	var in service.MemberInput
	if err := bind(c, &in); err != nil {
		h.fail(c, "create member", err)
		return
	}
	member, err := h.svc.Members.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "create member", err)
		return
	}
	respond(c, http.StatusCreated, member)
}

func (h *Handlers) UpdateMember(c *gin.Context) {
	var patch service.MemberPatch
	if err := bind(c, &patch); err != nil {
		h.fail(c, "update member", err)
		return
	}
	member, err := h.svc.Members.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.fail(c, "update member", err)
		return
	}
	respond(c, http.StatusOK, member)
}

func (h *Handlers) ListAwardees(c *gin.Context) {
	items, err := h.svc.Catalog.Awardees(c.Request.Context())
	respondList(h, c, "list awardees", items, err)
}

func (h *Handlers) CreateAwardee(c *gin.Context) {
	var in service.AwardeeInput
	if err := bind(c, &in); err != nil {
		h.fail(c, "create awardee", err)
		return
	}
	item, err := h.svc.Catalog.CreateAwardee(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "create awardee", err)
		return
	}
	respond(c, http.StatusCreated, item)
}

func (h *Handlers) ListPrograms(c *gin.Context) {
	items, err := h.svc.Catalog.Programs(c.Request.Context())
	respondList(h, c, "list programs", items, err)
}

func (h *Handlers) CreateProgram(c *gin.Context) {
	var in service.ProgramInput
	if err := bind(c, &in); err != nil {
		h.fail(c, "create program", err)
		return
	}
	item, err := h.svc.Catalog.CreateProgram(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "create program", err)
		return
	}
	respond(c, http.StatusCreated, item)
}

func (h *Handlers) ListTransactions(c *gin.Context) {
	items, err := h.svc.Catalog.Transactions(c.Request.Context())
	respondList(h, c, "list transactions", items, err)
}

func (h *Handlers) CreateTransaction(c *gin.Context) {
	var in service.TransactionInput
	if err := bind(c, &in); err != nil {
		h.fail(c, "create transaction", err)
		return
	}
	item, err := h.svc.Catalog.CreateTransaction(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "create transaction", err)
		return
	}
	respond(c, http.StatusCreated, item)
}

func (h *Handlers) ListTemplates(c *gin.Context) {
	items, err := h.svc.Catalog.Templates(c.Request.Context())
	respondList(h, c, "list templates", items, err)
}

// DashboardStats handles GET /api/dashboard/stats
func (h *Handlers) DashboardStats(c *gin.Context) {
	stats, err := h.svc.Dashboard.Stats(c.Request.Context(), actorFrom(c))
	if err != nil {
		if !apperr.IsStoreDown(err) {
			h.fail(c, "dashboard stats", err)
			return
		}
		h.logger.Error("Store unavailable, returning empty stats", "error", err)
		stats = &service.DashboardStats{}
	}
	respond(c, http.StatusOK, stats)
}

func (h *Handlers) Notifications(c *gin.Context) {
	notes, err := h.svc.Dashboard.Notifications(c.Request.Context(), actorFrom(c))
	if err != nil {
		if !apperr.IsStoreDown(err) {
			h.fail(c, "notifications", err)
			return
		}
		h.logger.Error("Store unavailable, returning empty notifications", "error", err)
		notes = &service.Notifications{ReturnedForRevision: []*entity.Letter{}, Approved: []*entity.Letter{}}
	}
	respond(c, http.StatusOK, notes)
}
