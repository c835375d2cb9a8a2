package costings

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

// Handler wires costing endpoints.
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

// MountRoutes registers costing routes. Designers cost styles, sellers
// quote them.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireRole("SELLER", "DESIGNER"))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
		r.Post("/quote", h.quote)
	})
}

type sheetRequest struct {
	LeadID      int64           `json:"lead_id"`
	StyleName   string          `json:"style_name" validate:"required,max=255"`
	FabricCost  decimal.Decimal `json:"fabric_cost"`
	Consumption decimal.Decimal `json:"consumption"`
	TrimCost    decimal.Decimal `json:"trim_cost"`
	CMCost      decimal.Decimal `json:"cm_cost"`
	PackingCost decimal.Decimal `json:"packing_cost"`
	Overhead    decimal.Decimal `json:"overhead"`
	MarginPct   decimal.Decimal `json:"margin_pct"`
}

type quoteRequest struct {
	FabricCost  decimal.Decimal `json:"fabric_cost"`
	Consumption decimal.Decimal `json:"consumption"`
	TrimCost    decimal.Decimal `json:"trim_cost"`
	CMCost      decimal.Decimal `json:"cm_cost"`
	PackingCost decimal.Decimal `json:"packing_cost"`
	Overhead    decimal.Decimal `json:"overhead"`
	MarginPct   decimal.Decimal `json:"margin_pct"`
}

func (req sheetRequest) toModel() Sheet {
	return Sheet{
		LeadID:      req.LeadID,
		StyleName:   req.StyleName,
		FabricCost:  req.FabricCost,
		Consumption: req.Consumption,
		TrimCost:    req.TrimCost,
		CMCost:      req.CMCost,
		PackingCost: req.PackingCost,
		Overhead:    req.Overhead,
		MarginPct:   req.MarginPct,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters := shared.FiltersFromRequest(r)
	list, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list costings", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	p := shared.NewPagination(filters.Page, filters.PerPage, total)
	httpx.List(w, list, httpx.ListMeta{Page: p.Page, PerPage: p.PerPage, Total: p.Total, TotalPages: p.TotalPages})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid costing id")
		return
	}
	sheet, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sheet)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req sheetRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return
	}
	sheet := req.toModel()
	if identity, ok := shared.IdentityFromContext(r.Context()); ok {
		sheet.CreatedBy = identity.UserID
	}
	created, err := h.service.Create(r.Context(), sheet)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid costing id")
		return
	}
	var req sheetRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return
	}
	updated, err := h.service.Update(r.Context(), id, req.toModel())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid costing id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	quote, err := h.service.QuoteOnly(Inputs{
		FabricCost:  req.FabricCost,
		Consumption: req.Consumption,
		TrimCost:    req.TrimCost,
		CMCost:      req.CMCost,
		PackingCost: req.PackingCost,
		Overhead:    req.Overhead,
		MarginPct:   req.MarginPct,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
