package leads

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/prime-apparel/backend/internal/platform/httpx"
	"github.com/prime-apparel/backend/internal/rbac"
	"github.com/prime-apparel/backend/internal/shared"
)

// Handler wires lead endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	rbac     rbac.Middleware
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac, validate: validator.New()}
}

// MountRoutes registers lead routes. Creation is public: the enquiry form
// on the website posts here without credentials.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.capture)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireRole("SELLER"))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
	})
}

type captureRequest struct {
	Name          string          `json:"name" validate:"required,max=255"`
	Email         string          `json:"email" validate:"required,email"`
	Phone         string          `json:"phone" validate:"max=20"`
	Country       string          `json:"country" validate:"max=100"`
	ProductType   string          `json:"product_type" validate:"max=100"`
	Quantity      int             `json:"quantity" validate:"gte=0"`
	Budget        decimal.Decimal `json:"budget"`
	Message       string          `json:"message"`
	ReferenceURLs []string        `json:"reference_urls" validate:"dive,url"`
}

type updateRequest struct {
	captureRequest
	Status         string `json:"status" validate:"required"`
	AssignedUserID int64  `json:"assigned_user_id"`
}

func (h *Handler) capture(w http.ResponseWriter, r *http.Request) {
	var req captureRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return
	}
	lead, err := h.service.Capture(r.Context(), Lead{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Country:       req.Country,
		ProductType:   req.ProductType,
		Quantity:      req.Quantity,
		Budget:        req.Budget,
		Message:       req.Message,
		ReferenceURLs: req.ReferenceURLs,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, lead)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters := shared.FiltersFromRequest(r)
	list, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list leads", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	p := shared.NewPagination(filters.Page, filters.PerPage, total)
	httpx.List(w, list, httpx.ListMeta{Page: p.Page, PerPage: p.PerPage, Total: p.Total, TotalPages: p.TotalPages})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid lead id")
		return
	}
	lead, history, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"lead": lead, "history": history})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid lead id")
		return
	}
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return
	}
	var actorID int64
	if identity, ok := shared.IdentityFromContext(r.Context()); ok {
		actorID = identity.UserID
	}
	lead, err := h.service.Update(r.Context(), id, Lead{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Country:        req.Country,
		ProductType:    req.ProductType,
		Quantity:       req.Quantity,
		Budget:         req.Budget,
		Message:        req.Message,
		ReferenceURLs:  req.ReferenceURLs,
		Status:         Status(req.Status),
		AssignedUserID: req.AssignedUserID,
	}, actorID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, lead)
}
