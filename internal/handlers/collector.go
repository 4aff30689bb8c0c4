package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/markjakearzadon/trashmate-gobackend/internal/models"
	"github.com/markjakearzadon/trashmate-gobackend/internal/services"
)

type CollectorHandler struct {
	ledger *services.LedgerService
	logger *zap.Logger
}

func NewCollectorHandler(ledger *services.LedgerService, logger *zap.Logger) *CollectorHandler {
	return &CollectorHandler{ledger: ledger, logger: logger}
}

type CollectionResponse struct {
	Message string                  `json:"message"`
	Entry   *models.CollectionEntry `json:"entry"`
}

func (h *CollectorHandler) AssignedUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.ledger.AssignedResidents(r.Context(), caller(r).UserID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	JSONResponse(w, http.StatusOK, users)
}

func (h *CollectorHandler) CollectGarbage(w http.ResponseWriter, r *http.Request) {
	residentID, err := pathID(r, "userId")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	var body struct {
		WasteData []models.WasteItem `json:"wasteData"`
	}
	if err := parseJSONBody(r, &body); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	entry, err := h.ledger.Record(r.Context(), caller(r).UserID, residentID, body.WasteData)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	JSONResponse(w, http.StatusCreated, CollectionResponse{Message: "Garbage collection recorded", Entry: entry})
}
