package handlers

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/markjakearzadon/trashmate-gobackend/internal/apperr"
	"github.com/markjakearzadon/trashmate-gobackend/internal/models"
	"github.com/markjakearzadon/trashmate-gobackend/internal/services"
)

type AdminHandler struct {
	admin    *services.AdminService
	invoices *services.InvoiceService
	stats    *services.StatsService
	logger   *zap.Logger
}

func NewAdminHandler(admin *services.AdminService, invoices *services.InvoiceService, stats *services.StatsService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, invoices: invoices, stats: stats, logger: logger}
}

type InvoiceResponse struct {
	Message string          `json:"message"`
	Invoice *models.Invoice `json:"invoice"`
}

func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.admin.ListResidents(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	JSONResponse(w, http.StatusOK, users)
}

func (h *AdminHandler) AssignCollector(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID      string `json:"userId"`
		CollectorID string `json:"collectorId"`
	}
	if err := parseJSONBody(r, &body); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	residentID, err := primitive.ObjectIDFromHex(body.UserID)
	if err != nil {
		ErrorResponse(w, r, h.logger, apperr.NotFound("User not found"))
		return
	}
	collectorID, err := primitive.ObjectIDFromHex(body.CollectorID)
	if err != nil {
		ErrorResponse(w, r, h.logger, apperr.NotFound("Garbage collector not found"))
		return
	}
	if err := h.admin.AssignCollector(r.Context(), residentID, collectorID); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	JSONResponse(w, http.StatusOK, MessageResponse{Message: "Garbage collector assigned to user"})
}

// GenerateInvoice answers 201 for a new invoice and 200 when the invoice for
// the same collections already exists.
func (h *AdminHandler) GenerateInvoice(w http.ResponseWriter, r *http.Request) {
	residentID, err := pathID(r, "userId")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	inv, created, err := h.invoices.Generate(r.Context(), residentID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if !created {
		JSONResponse(w, http.StatusOK, InvoiceResponse{Message: "Invoice already generated", Invoice: inv})
		return
	}
	JSONResponse(w, http.StatusCreated, InvoiceResponse{Message: "Invoice generated", Invoice: inv})
}

func (h *AdminHandler) GarbageStats(w http.ResponseWriter, r *http.Request) {
	totals, err := h.stats.WasteTotals(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	JSONResponse(w, http.StatusOK, totals)
}

func (h *AdminHandler) RequestsPerMonth(w http.ResponseWriter, r *http.Request) {
	months, err := h.stats.RequestsPerMonth(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	JSONResponse(w, http.StatusOK, months)
}

func (h *AdminHandler) CollectorAssignments(w http.ResponseWriter, r *http.Request) {
	rows, err := h.stats.CollectorAssignments(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	JSONResponse(w, http.StatusOK, rows)
}

func (h *AdminHandler) CategoryCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.stats.CategoryCounts(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	JSONResponse(w, http.StatusOK, counts)
}
