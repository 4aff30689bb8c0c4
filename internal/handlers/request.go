package handlers

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/markjakearzadon/trashmate-gobackend/internal/apperr"
	"github.com/markjakearzadon/trashmate-gobackend/internal/models"
	"github.com/markjakearzadon/trashmate-gobackend/internal/services"
)

type RequestHandler struct {
	service *services.RequestService
	logger  *zap.Logger
}

func NewRequestHandler(service *services.RequestService, logger *zap.Logger) *RequestHandler {
	return &RequestHandler{service: service, logger: logger}
}

type createRequestBody struct {
	WasteItems       []models.WasteItem `json:"wasteItems"`
	Items            []models.WasteItem `json:"items"`
	PaymentReference string             `json:"paymentReference"`
	PaymentIntentID  string             `json:"paymentIntentId"`
}

func (b createRequestBody) items() []models.WasteItem {
	if len(b.WasteItems) > 0 {
		return b.WasteItems
	}
	return b.Items
}

func (b createRequestBody) reference() string {
	if b.PaymentReference != "" {
		return b.PaymentReference
	}
	return b.PaymentIntentID
}

type CreateRequestResponse struct {
	Message string          `json:"message"`
	Request *models.Request `json:"request"`
}

func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createRequestBody
	if err := parseJSONBody(r, &body); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	req, err := h.service.Create(r.Context(), caller(r).UserID, body.items(), body.reference())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	JSONResponse(w, http.StatusCreated, CreateRequestResponse{
		Message: "Waste collection request created successfully",
		Request: req,
	})
}

func (h *RequestHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.service.ListAll(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	JSONResponse(w, http.StatusOK, reqs)
}

func (h *RequestHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	var body struct {
		CollectorID string `json:"collectorId"`
	}
	if err := parseJSONBody(r, &body); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	collectorID, err := primitive.ObjectIDFromHex(body.CollectorID)
	if err != nil {
		ErrorResponse(w, r, h.logger, apperr.Validation("Invalid collector id"))
		return
	}
	req, err := h.service.Assign(r.Context(), id, collectorID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	JSONResponse(w, http.StatusOK, req)
}

func (h *RequestHandler) AssignedToMe(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.service.ListByCollector(r.Context(), caller(r).UserID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	JSONResponse(w, http.StatusOK, reqs)
}

func (h *RequestHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	req, err := h.service.Complete(r.Context(), id, caller(r))
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	JSONResponse(w, http.StatusOK, req)
}

func (h *RequestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	JSONResponse(w, http.StatusOK, MessageResponse{Message: "Request deleted"})
}

func (h *RequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	req, err := h.service.Get(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	JSONResponse(w, http.StatusOK, req)
}

func (h *RequestHandler) Mine(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.service.ListByResident(r.Context(), caller(r).UserID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	JSONResponse(w, http.StatusOK, reqs)
}
