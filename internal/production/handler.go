package production

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

// Handler wires production endpoints, keyed by order.
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

// MountRoutes registers production routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireRole("SELLER"))
		r.Get("/orders/{orderID}", h.getRecord)
		r.Put("/orders/{orderID}", h.upsertRecord)
		r.Get("/orders/{orderID}/qc-reports", h.listQCReports)
		r.Post("/orders/{orderID}/qc-reports", h.postQCReport)
		r.Get("/orders/{orderID}/shipments", h.listShipments)
		r.Post("/orders/{orderID}/shipments", h.createShipment)
		r.Put("/shipments/{id}/status", h.updateShipmentStatus)
	})
}

type recordRequest struct {
	Approvals map[string]any `json:"approvals"`
	Stages    map[string]any `json:"stages"`
	Notes     string         `json:"notes"`
}

type qcReportRequest struct {
	Type      string          `json:"qc_type" validate:"required,oneof=INLINE TOP FINAL"`
	Status    string          `json:"status" validate:"required,oneof=PASS FAIL PENDING"`
	AQL       decimal.Decimal `json:"aql"`
	Defects   map[string]any  `json:"defects"`
	ImageURLs []string        `json:"image_urls" validate:"dive,url"`
	Notes     string          `json:"notes"`
}

type shipmentRequest struct {
	Courier      string   `json:"courier" validate:"required,max=100"`
	TrackingNo   string   `json:"tracking_no" validate:"max=100"`
	ETD          string   `json:"etd" validate:"omitempty,datetime=2006-01-02"`
	ETA          string   `json:"eta" validate:"omitempty,datetime=2006-01-02"`
	DocumentURLs []string `json:"document_urls" validate:"dive,url"`
}

type shipmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING SHIPPED DELIVERED"`
}

func (h *Handler) getRecord(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseParam(r, "orderID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return
	}
	record, err := h.service.RecordByOrder(r.Context(), orderID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, record)
}

func (h *Handler) upsertRecord(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseParam(r, "orderID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return
	}
	var req recordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	record, err := h.service.UpsertRecord(r.Context(), Record{
		OrderID:   orderID,
		Approvals: req.Approvals,
		Stages:    req.Stages,
		Notes:     req.Notes,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, record)
}

func (h *Handler) listQCReports(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseParam(r, "orderID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return
	}
	reports, err := h.service.QCReportsByOrder(r.Context(), orderID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, reports)
}

func (h *Handler) postQCReport(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseParam(r, "orderID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return
	}
	var req qcReportRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return
	}
	report := QCReport{
		OrderID:   orderID,
		Type:      QCType(req.Type),
		Status:    QCStatus(req.Status),
		AQL:       req.AQL,
		Defects:   req.Defects,
		ImageURLs: req.ImageURLs,
		Notes:     req.Notes,
	}
	if identity, ok := shared.IdentityFromContext(r.Context()); ok {
		report.CreatedBy = identity.UserID
	}
	created, err := h.service.PostQCReport(r.Context(), report)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) listShipments(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseParam(r, "orderID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return
	}
	shipments, err := h.service.ShipmentsByOrder(r.Context(), orderID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, shipments)
}

func (h *Handler) createShipment(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseParam(r, "orderID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return
	}
	var req shipmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return
	}
	shipment := Shipment{
		OrderID:      orderID,
		Courier:      req.Courier,
		TrackingNo:   req.TrackingNo,
		DocumentURLs: req.DocumentURLs,
	}
	if req.ETD != "" {
		shipment.ETD, _ = time.Parse("2006-01-02", req.ETD)
	}
	if req.ETA != "" {
		shipment.ETA, _ = time.Parse("2006-01-02", req.ETA)
	}
	created, err := h.service.CreateShipment(r.Context(), shipment)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) updateShipmentStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseParam(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid shipment id")
		return
	}
	var req shipmentStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return
	}
	shipment, err := h.service.UpdateShipmentStatus(r.Context(), id, ShipmentStatus(req.Status))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, shipment)
}

func parseParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
