package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/markjakearzadon/trashmate-gobackend/internal/models"
	"github.com/markjakearzadon/trashmate-gobackend/internal/services"
)

// Services is everything the router dispatches to. Photos may be nil.
type Services struct {
	Auth     *services.AuthService
	Requests *services.RequestService
	Ledger   *services.LedgerService
	Invoices *services.InvoiceService
	Admin    *services.AdminService
	Stats    *services.StatsService
	Payments *services.PaymentService
	Photos   *services.PhotoService
}

// NewRouter mounts the JSON API under /api.
func NewRouter(svc Services, logger *zap.Logger) *mux.Router {
	userHandler := NewUserHandler(svc.Auth, svc.Photos, logger)
	requestHandler := NewRequestHandler(svc.Requests, logger)
	adminHandler := NewAdminHandler(svc.Admin, svc.Invoices, svc.Stats, logger)
	collectorHandler := NewCollectorHandler(svc.Ledger, logger)
	invoiceHandler := NewInvoiceHandler(svc.Invoices, svc.Auth, logger)
	paymentHandler := NewPaymentHandler(svc.Payments, logger)

	router := mux.NewRouter()
	router.Use(WithRequestID, WithLogging(logger), WithRecovery(logger))
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		JSONResponse(w, http.StatusNotFound, MessageResponse{Message: "Not found"})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		JSONResponse(w, http.StatusMethodNotAllowed, MessageResponse{Message: "Method not allowed"})
	})

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET", "HEAD")

	api := router.PathPrefix("/api").Subrouter()
	authn := Authenticate(svc.Auth, logger)

	// route registers h behind authentication and, when roles are given, the role guard.
	route := func(method, path string, h http.HandlerFunc, roles ...models.Role) {
		var handler http.Handler = h
		if len(roles) > 0 {
			handler = RequireRoles(roles...)(handler)
		}
		api.Handle(path, authn(handler)).Methods(method)
	}

	api.HandleFunc("/auth/register", userHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", userHandler.Login).Methods("POST")
	route("GET", "/auth/profile", userHandler.Profile)
	route("PUT", "/auth/profile", userHandler.UpdateProfile)
	route("POST", "/auth/profile/photo", userHandler.PhotoUpload)
	route("POST", "/auth/logout", userHandler.Logout)
	route("GET", "/auth/garbage-collectors", userHandler.Collectors)

	route("POST", "/request/create", requestHandler.Create, models.RoleResident)
	route("GET", "/request/admin/requests", requestHandler.ListAll, models.RoleAdmin)
	route("PUT", "/request/admin/assign/{id}", requestHandler.Assign, models.RoleAdmin)
	route("GET", "/request/collector/assigned-requests", requestHandler.AssignedToMe, models.RoleCollector)
	route("PUT", "/request/collector/complete/{id}", requestHandler.Complete, models.RoleCollector)
	route("GET", "/request/user/my-requests", requestHandler.Mine, models.RoleResident)
	route("DELETE", "/request/{id}", requestHandler.Delete, models.RoleAdmin)
	route("GET", "/request/{id}", requestHandler.Get)

	route("GET", "/admin/users", adminHandler.Users, models.RoleAdmin)
	route("PUT", "/admin/assign-collector", adminHandler.AssignCollector, models.RoleAdmin)
	route("POST", "/admin/generate-invoice/{userId}", adminHandler.GenerateInvoice, models.RoleAdmin)
	route("GET", "/admin/garbage-stats", adminHandler.GarbageStats, models.RoleAdmin)
	route("GET", "/admin/requests-per-month", adminHandler.RequestsPerMonth, models.RoleAdmin)
	route("GET", "/admin/collector-assignments", adminHandler.CollectorAssignments, models.RoleAdmin)
	route("GET", "/admin/garbage-category-count", adminHandler.CategoryCounts, models.RoleAdmin)

	route("GET", "/collector/assigned-users", collectorHandler.AssignedUsers, models.RoleCollector)
	route("POST", "/collector/collect-garbage/{userId}", collectorHandler.CollectGarbage, models.RoleCollector)

	route("GET", "/user/invoices", invoiceHandler.Mine, models.RoleResident)
	route("GET", "/user/invoices/{id}/export", invoiceHandler.Export, models.RoleResident, models.RoleAdmin)

	route("POST", "/stripe/create-payment-intent", paymentHandler.CreatePaymentIntent, models.RoleResident)

	return router
}
