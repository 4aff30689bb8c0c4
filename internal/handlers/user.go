package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/markjakearzadon/trashmate-gobackend/internal/apperr"
	"github.com/markjakearzadon/trashmate-gobackend/internal/models"
	"github.com/markjakearzadon/trashmate-gobackend/internal/services"
)

type TokenResponse struct {
	Token string `json:"token"`
}

type UserHandler struct {
	service *services.AuthService
	photos  *services.PhotoService
	logger  *zap.Logger
}

// NewUserHandler builds the account handlers. photos may be nil when photo
// uploads are not configured.
func NewUserHandler(service *services.AuthService, photos *services.PhotoService, logger *zap.Logger) *UserHandler {
	return &UserHandler{service: service, photos: photos, logger: logger}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in services.Registration
	if err := parseJSONBody(r, &in); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	token, err := h.service.Register(r.Context(), in)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	JSONResponse(w, http.StatusCreated, TokenResponse{Token: token})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseJSONBody(r, &creds); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if creds.Email == "" || creds.Password == "" {
		ErrorResponse(w, r, h.logger, apperr.Validation("Email and password are required"))
		return
	}
	token, err := h.service.Login(r.Context(), creds.Email, creds.Password)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	JSONResponse(w, http.StatusOK, TokenResponse{Token: token})
}

func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Profile(r.Context(), caller(r).UserID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	JSONResponse(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var update models.ProfileUpdate
	if err := parseJSONBody(r, &update); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	user, err := h.service.UpdateProfile(r.Context(), caller(r).UserID, update)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	JSONResponse(w, http.StatusOK, user)
}

func (h *UserHandler) Collectors(w http.ResponseWriter, r *http.Request) {
	collectors, err := h.service.Collectors(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	JSONResponse(w, http.StatusOK, collectors)
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), caller(r)); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	JSONResponse(w, http.StatusOK, MessageResponse{Message: "Logged out"})
}

func (h *UserHandler) PhotoUpload(w http.ResponseWriter, r *http.Request) {
	if h.photos == nil {
		JSONResponse(w, http.StatusNotFound, MessageResponse{Message: "Photo uploads are not enabled"})
		return
	}
	var body struct {
		ContentType string `json:"contentType"`
	}
	if err := parseJSONBody(r, &body); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	upload, err := h.photos.UploadURL(r.Context(), caller(r).UserID, body.ContentType)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	JSONResponse(w, http.StatusOK, upload)
}
