package products

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

// Handler wires catalog endpoints.
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

// MountRoutes registers catalog routes. Reads are public (the website
// browses the catalog anonymously); mutations are admin only.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireRole("ADMIN"))
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

type tierRequest struct {
	MinQuantity int             `json:"min_quantity" validate:"gte=0"`
	Price       decimal.Decimal `json:"price"`
}

type productRequest struct {
	Name           string         `json:"name" validate:"required,max=255"`
	Description    string         `json:"description"`
	Category       string         `json:"category" validate:"max=100"`
	SubCategory    string         `json:"sub_category" validate:"max=100"`
	ImageURLs      []string       `json:"image_urls" validate:"dive,url"`
	PriceTiers     []tierRequest  `json:"price_tiers" validate:"dive"`
	Colors         []string       `json:"colors"`
	Sizes          []string       `json:"sizes"`
	MOQ            int            `json:"moq" validate:"gte=0"`
	LeadTimeDays   int            `json:"lead_time_days" validate:"gte=0"`
	Material       string         `json:"material" validate:"max=255"`
	Certifications []string       `json:"certifications"`
	Customization  string         `json:"customization"`
	Specifications map[string]any `json:"specifications"`
	IsActive       bool           `json:"is_active"`
}

func (req productRequest) toModel() Product {
	tiers := make([]PriceTier, 0, len(req.PriceTiers))
	for _, t := range req.PriceTiers {
		tiers = append(tiers, PriceTier{MinQuantity: t.MinQuantity, Price: t.Price})
	}
	return Product{
		Name:           req.Name,
		Description:    req.Description,
		Category:       req.Category,
		SubCategory:    req.SubCategory,
		ImageURLs:      req.ImageURLs,
		PriceTiers:     tiers,
		Colors:         req.Colors,
		Sizes:          req.Sizes,
		MOQ:            req.MOQ,
		LeadTimeDays:   req.LeadTimeDays,
		Material:       req.Material,
		Certifications: req.Certifications,
		Customization:  req.Customization,
		Specifications: req.Specifications,
		IsActive:       req.IsActive,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters := ListFilters{ListFilters: shared.FiltersFromRequest(r)}
	filters.Category = r.URL.Query().Get("category")
	// Anonymous browsing only sees live products; staff see everything.
	if _, ok := shared.IdentityFromContext(r.Context()); !ok {
		filters.ActiveOnly = true
	}
	list, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	p := shared.NewPagination(filters.Page, filters.PerPage, total)
	httpx.List(w, list, httpx.ListMeta{Page: p.Page, PerPage: p.PerPage, Total: p.Total, TotalPages: p.TotalPages})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return
	}
	product, err := h.service.Create(r.Context(), req.toModel())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return
	}
	product, err := h.service.Update(r.Context(), id, req.toModel())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
