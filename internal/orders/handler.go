package orders

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

// Handler wires order endpoints.
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

// MountRoutes registers order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireRole("SELLER"))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Post("/", h.create)
		r.Post("/{id}/transition", h.transition)
		r.Put("/{id}/documents", h.attachDocuments)
	})
}

type productRequest struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name" validate:"required,max=255"`
	Quantity  decimal.Decimal `json:"quantity" validate:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type createOrderRequest struct {
	PINumber     string           `json:"pi_number" validate:"max=50"`
	LeadID       int64            `json:"lead_id"`
	BuyerName    string           `json:"buyer_name" validate:"required,max=255"`
	BuyerEmail   string           `json:"buyer_email" validate:"omitempty,email"`
	BuyerCompany string           `json:"buyer_company" validate:"max=255"`
	BuyerAddress string           `json:"buyer_address"`
	Term         string           `json:"commercial_term" validate:"required,oneof=EXW FOB CIF CIP DDP_AIR DDP_SEA"`
	PaymentTerms string           `json:"payment_terms" validate:"max=255"`
	Currency     string           `json:"currency" validate:"omitempty,len=3"`
	DocumentURLs []string         `json:"document_urls" validate:"dive,url"`
	Products     []productRequest `json:"products" validate:"required,min=1,dive"`
}

type transitionRequest struct {
	Status string `json:"status" validate:"required"`
}

type documentsRequest struct {
	DocumentURLs []string `json:"document_urls" validate:"required,dive,url"`
}

type orderResponse struct {
	Order
	Products []OrderProduct `json:"products"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters := shared.FiltersFromRequest(r)
	list, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	p := shared.NewPagination(filters.Page, filters.PerPage, total)
	httpx.List(w, list, httpx.ListMeta{Page: p.Page, PerPage: p.PerPage, Total: p.Total, TotalPages: p.TotalPages})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return
	}
	order, products, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, orderResponse{Order: order, Products: products})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return
	}
	input := CreateInput{
		PINumber:     req.PINumber,
		LeadID:       req.LeadID,
		BuyerName:    req.BuyerName,
		BuyerEmail:   req.BuyerEmail,
		BuyerCompany: req.BuyerCompany,
		BuyerAddress: req.BuyerAddress,
		Term:         CommercialTerm(req.Term),
		PaymentTerms: req.PaymentTerms,
		Currency:     req.Currency,
		DocumentURLs: req.DocumentURLs,
	}
	if identity, ok := shared.IdentityFromContext(r.Context()); ok {
		input.CreatedBy = identity.UserID
	}
	for _, p := range req.Products {
		input.Products = append(input.Products, ProductInput{
			ProductID: p.ProductID,
			Name:      p.Name,
			Quantity:  p.Quantity,
			UnitPrice: p.UnitPrice,
		})
	}
	order, products, err := h.service.Create(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, orderResponse{Order: order, Products: products})
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return
	}
	var req transitionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return
	}
	order, err := h.service.Transition(r.Context(), id, Status(req.Status))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) attachDocuments(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return
	}
	var req documentsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return
	}
	order, err := h.service.AttachDocuments(r.Context(), id, req.DocumentURLs)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
