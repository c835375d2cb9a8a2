package procurement

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/prime-apparel/backend/internal/platform/httpx"
	"github.com/prime-apparel/backend/internal/rbac"
	"github.com/prime-apparel/backend/internal/shared"
)

// Handler wires purchase order endpoints.
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

// MountRoutes registers purchase order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireRole("SELLER"))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Post("/", h.create)
		r.Post("/{id}/payments", h.recordPayment)
		r.Post("/{id}/send", h.markSent)
		r.Post("/{id}/cancel", h.cancel)
	})
}

type poItemRequest struct {
	Description string          `json:"description" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity" validate:"required"`
	Unit        string          `json:"unit" validate:"max=20"`
	Rate        decimal.Decimal `json:"rate"`
}

type createPORequest struct {
	Number       string          `json:"po_number" validate:"max=50"`
	SupplierID   int64           `json:"supplier_id" validate:"required,gt=0"`
	OrderID      int64           `json:"order_id"`
	Type         string          `json:"po_type" validate:"required,oneof=FABRIC TRIM MANUFACTURING"`
	DeliveryDate string          `json:"delivery_date" validate:"omitempty,datetime=2006-01-02"`
	Note         string          `json:"note"`
	Items        []poItemRequest `json:"items" validate:"required,min=1,dive"`
}

type paymentRequest struct {
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Method      string          `json:"method" validate:"required,max=50"`
	Reference   string          `json:"reference" validate:"max=100"`
	ProofURL    string          `json:"proof_url" validate:"omitempty,url"`
	PaymentDate string          `json:"payment_date" validate:"omitempty,datetime=2006-01-02"`
}

type poResponse struct {
	PurchaseOrder
	Items    []POItem    `json:"items"`
	Payments []POPayment `json:"payments"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters := ListFilters{ListFilters: shared.FiltersFromRequest(r)}
	filters.Type = r.URL.Query().Get("type")
	if supplierID, err := strconv.ParseInt(r.URL.Query().Get("supplier_id"), 10, 64); err == nil {
		filters.SupplierID = supplierID
	}
	items, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list purchase orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	p := shared.NewPagination(filters.Page, filters.PerPage, total)
	httpx.List(w, items, httpx.ListMeta{Page: p.Page, PerPage: p.PerPage, Total: p.Total, TotalPages: p.TotalPages})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid purchase order id")
		return
	}
	po, items, payments, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, poResponse{PurchaseOrder: po, Items: items, Payments: payments})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createPORequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return
	}
	input := CreatePOInput{
		Number:     req.Number,
		SupplierID: req.SupplierID,
		OrderID:    req.OrderID,
		Type:       POType(req.Type),
		Note:       req.Note,
	}
	if req.DeliveryDate != "" {
		input.DeliveryDate, _ = time.Parse("2006-01-02", req.DeliveryDate)
	}
	if identity, ok := shared.IdentityFromContext(r.Context()); ok {
		input.CreatedBy = identity.UserID
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, POItemInput{
			Description: item.Description,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			Rate:        item.Rate,
		})
	}
	po, err := h.service.CreatePurchaseOrder(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, po)
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid purchase order id")
		return
	}
	var req paymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return
	}
	input := PaymentInput{
		POID:      id,
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
		ProofURL:  req.ProofURL,
	}
	if req.PaymentDate != "" {
		input.PaymentDate, _ = time.Parse("2006-01-02", req.PaymentDate)
	}
	if identity, ok := shared.IdentityFromContext(r.Context()); ok {
		input.RecordedBy = identity.UserID
	}
	payment, err := h.service.RecordPayment(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, payment)
}

func (h *Handler) markSent(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid purchase order id")
		return
	}
	if err := h.service.MarkSent(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": string(POStatusSent)})
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid purchase order id")
		return
	}
	if err := h.service.CancelPurchaseOrder(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": string(POStatusCancelled)})
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
