package ledger

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/rgstore/rgstore-pos/internal/catalog"
	"github.com/rgstore/rgstore-pos/internal/platform/httpx"
	"github.com/rgstore/rgstore-pos/internal/shared"
)

// Handler wires the stock adjustment and movement audit endpoints. Routes
// mount under the products subtree next to the catalog handler.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers ledger routes on the products router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/{id}/adjust-stock", h.adjustStock)
	r.Get("/{id}/movements", h.listMovements)
}

func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return
	}
	var req AdjustStockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	product, err := h.service.Adjust(r.Context(), AdjustmentInput{
		ProductID: id,
		Quantity:  req.Quantity,
		Type:      MovementType(req.Type),
		Reason:    req.Reason,
	})
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) && !errors.Is(err, shared.ErrInsufficientStock) &&
			!errors.Is(err, shared.ErrValidation) {
			h.logger.Error("adjust stock", slog.Any("error", err), slog.Int64("product_id", id))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, catalog.NewProductView(product))
}

func (h *Handler) listMovements(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	movements, err := h.service.ListMovements(r.Context(), id, MovementFilter{Limit: limit})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if movements == nil {
		movements = []Movement{}
	}
	httpx.JSON(w, http.StatusOK, movements)
}
