package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/markjakearzadon/trashmate-gobackend/internal/apperr"
	"github.com/markjakearzadon/trashmate-gobackend/internal/auth"
	"github.com/markjakearzadon/trashmate-gobackend/internal/models"
	"github.com/markjakearzadon/trashmate-gobackend/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type InvoiceHandler struct {
	invoices *services.InvoiceService
	users    *services.AuthService
	logger   *zap.Logger
}

func NewInvoiceHandler(invoices *services.InvoiceService, users *services.AuthService, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, users: users, logger: logger}
}

func (h *InvoiceHandler) Mine(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.invoices.ListForResident(r.Context(), caller(r).UserID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	JSONResponse(w, http.StatusOK, invoices)
}

// Export streams an invoice as a spreadsheet to its resident or an admin.
func (h *InvoiceHandler) Export(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	inv, err := h.invoices.Get(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	me := caller(r)
	if inv.ResidentID != me.UserID && !auth.Allowed(me.Role, models.RoleAdmin) {
		ErrorResponse(w, r, h.logger, apperr.NotFound("Invoice not found"))
		return
	}

	var name string
	if resident, err := h.users.Profile(r.Context(), inv.ResidentID); err == nil {
		name = resident.Name
	}
	data, err := services.ExportInvoice(inv, name)
	if err != nil {
		ErrorResponse(w, r, h.logger, apperr.Upstream("failed to export invoice", err))
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+inv.Number+`.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("failed to write export", zap.Error(err))
	}
}
