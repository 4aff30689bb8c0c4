package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/markjakearzadon/trashmate-gobackend/internal/models"
	"github.com/markjakearzadon/trashmate-gobackend/internal/services"
)

type PaymentHandler struct {
	service *services.PaymentService
	logger  *zap.Logger
}

func NewPaymentHandler(service *services.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{service: service, logger: logger}
}

// CreatePaymentIntent prices the items server-side and opens a charge the
// client confirms before creating the pickup request.
func (h *PaymentHandler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		WasteItems []models.WasteItem `json:"wasteItems"`
	}
	if err := parseJSONBody(r, &body); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	intent, err := h.service.CreateIntent(r.Context(), caller(r).UserID, body.WasteItems)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	JSONResponse(w, http.StatusOK, intent)
}
