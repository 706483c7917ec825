package registrations

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gatsby-party/backend/internal/identity"
	"github.com/gatsby-party/backend/internal/models"
	"github.com/gatsby-party/backend/pkg/response"
)

// RegisterRequest is the body for POST /api/registrations. CookieID is
// optional; when absent the identity cookie (minted on demand) is used.
type RegisterRequest struct {
	Name             string   `json:"name" binding:"required"`
	Drinks           []string `json:"drinks"`
	IndividualWishes string   `json:"individual_wishes"`
	CookieID         string   `json:"cookie_id"`
}

// AmendRequest is the body for PUT /api/registrations/:cookieId.
type AmendRequest struct {
	Name             string   `json:"name" binding:"required"`
	Drinks           []string `json:"drinks"`
	IndividualWishes string   `json:"individual_wishes"`
}

// Handler exposes the registration lifecycle over HTTP.
type Handler struct {
	service  *Service
	identity *identity.Manager
	logger   *zap.Logger
}

// NewHandler creates a registrations handler.
func NewHandler(service *Service, idm *identity.Manager, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, identity: idm, logger: logger}
}

// Routes mounts the registration endpoints on r.
func (h *Handler) Routes(r gin.IRouter) {
	api := r.Group("/api")
	api.GET("/registrations", h.List)
	api.POST("/registrations", h.Register)
	api.GET("/registrations/:cookieId", h.Lookup)
	api.PUT("/registrations/:cookieId", h.Amend)
	api.DELETE("/registrations/:cookieId", h.Withdraw)
	api.GET("/drinks", h.Drinks)
}

// List handles GET /api/registrations: the aggregate guest view.
func (h *Handler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		h.fail(c, err, "list registrations")
		return
	}
	if list == nil {
		list = []models.Registration{}
	}
	response.OK(c, list)
}

// Register handles POST /api/registrations. Strictly a create: a token that
// is already registered gets 409, and the client is expected to PUT instead.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	token := req.CookieID
	if token == "" {
		token = h.identity.Ensure(c)
	} else if !identity.Valid(token) {
		response.BadRequest(c, "invalid cookie_id")
		return
	} else {
		h.identity.Refresh(c, token)
	}

	reg, err := h.service.Register(c.Request.Context(), token, req.Name, req.Drinks, req.IndividualWishes)
	if err != nil {
		h.fail(c, err, "register")
		return
	}
	response.Created(c, reg)
}

// Lookup handles GET /api/registrations/:cookieId.
func (h *Handler) Lookup(c *gin.Context) {
	reg, err := h.service.Lookup(c.Request.Context(), c.Param("cookieId"))
	if err != nil {
		h.fail(c, err, "lookup")
		return
	}
	response.OK(c, reg)
}

// Amend handles PUT /api/registrations/:cookieId. Strictly an update: an
// unregistered token gets 404, never an implicit create.
func (h *Handler) Amend(c *gin.Context) {
	var req AmendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	reg, err := h.service.Amend(c.Request.Context(), c.Param("cookieId"), req.Name, req.Drinks, req.IndividualWishes)
	if err != nil {
		h.fail(c, err, "amend")
		return
	}
	response.OK(c, reg)
}

// Withdraw handles DELETE /api/registrations/:cookieId and clears the
// identity cookie on success so the next visit starts unregistered.
func (h *Handler) Withdraw(c *gin.Context) {
	token := c.Param("cookieId")
	if err := h.service.Withdraw(c.Request.Context(), token); err != nil {
		h.fail(c, err, "withdraw")
		return
	}
	if h.identity.Token(c) == token {
		h.identity.Clear(c)
	}
	response.OK(c, gin.H{"success": true})
}

// Drinks handles GET /api/drinks: the drink vocabulary for the form.
func (h *Handler) Drinks(c *gin.Context) {
	response.OK(c, models.DrinkOptions)
}

// fail maps service errors onto the response taxonomy. Anything outside the
// deterministic cases is treated as a transient store failure.
func (h *Handler) fail(c *gin.Context, err error, op string) {
	switch {
	case IsValidation(err):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrConflict):
		response.Conflict(c, "already registered")
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, "registration not found")
	default:
		h.logger.Error(op+" failed", zap.Error(err))
		response.Internal(c, "temporary failure, please retry")
	}
}
