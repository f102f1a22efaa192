// Package auth serves the account flows: sign up, sign in, sign out,
// password reset and password update.
package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/symptomsync/healthai/backend/internal/middleware"
	modelauth "github.com/symptomsync/healthai/backend/internal/model/auth"
	authService "github.com/symptomsync/healthai/backend/internal/service/auth"
	"github.com/symptomsync/healthai/backend/pkg/utils"
)

// Handler exposes the identity provider over HTTP.
type Handler struct {
	provider         authService.Provider
	passwordRedirect string
	validate         *validator.Validate
}

// New creates an auth handler. passwordRedirect is the page reset emails
// link back to.
func New(provider authService.Provider, passwordRedirect string) *Handler {
	return &Handler{
		provider:         provider,
		passwordRedirect: passwordRedirect,
		validate:         validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterPublicRoutes mounts the routes that work without a session.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/signup", h.handleSignUp)
	r.Post("/login", h.handleLogin)
	r.Post("/forgot-password", h.handleForgotPassword)
}

// RegisterSessionRoutes mounts the routes that need a resolved principal.
func (h *Handler) RegisterSessionRoutes(r chi.Router) {
	r.Post("/logout", h.handleLogout)
	r.Post("/update-password", h.handleUpdatePassword)
	r.Get("/me", h.handleMe)
}

type signUpRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type updatePasswordRequest struct {
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

func (h *Handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var payload signUpRequest
	if !h.decode(w, r, &payload) {
		return
	}
	if err := authService.ValidatePassword(payload.Password, payload.ConfirmPassword); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.provider.SignUp(r.Context(), payload.Email, payload.Password)
	if err != nil {
		respondAuthError(w, "signup", err)
		return
	}

	setSessionCookie(w, session)
	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if !h.decode(w, r, &payload) {
		return
	}

	session, err := h.provider.SignIn(r.Context(), payload.Email, payload.Password)
	if err != nil {
		respondAuthError(w, "login", err)
		return
	}

	setSessionCookie(w, session)
	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var payload forgotPasswordRequest
	if !h.decode(w, r, &payload) {
		return
	}

	if err := h.provider.ResetPassword(r.Context(), payload.Email, h.passwordRedirect); err != nil {
		respondAuthError(w, "forgot-password", err)
		return
	}
	utils.RespondJSON(w, http.StatusAccepted, map[string]string{"status": "reset email sent"})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	principal, _ := modelauth.PrincipalFromContext(r.Context())
	if err := h.provider.SignOut(r.Context(), principal.AccessToken); err != nil {
		respondAuthError(w, "logout", err)
		return
	}

	clearSessionCookie(w)
	utils.RespondJSON(w, http.StatusOK, map[string]string{"redirect": authService.LoginRoute})
}

func (h *Handler) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	var payload updatePasswordRequest
	if !h.decode(w, r, &payload) {
		return
	}
	if err := authService.ValidatePassword(payload.Password, payload.ConfirmPassword); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	principal, _ := modelauth.PrincipalFromContext(r.Context())
	user, err := h.provider.UpdatePassword(r.Context(), principal.AccessToken, payload.Password)
	if err != nil {
		respondAuthError(w, "update-password", err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, user)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := modelauth.PrincipalFromContext(r.Context())
	if !ok {
		utils.RespondRedirect(w, http.StatusUnauthorized, "unauthenticated", authService.LoginRoute)
		return
	}
	utils.RespondJSON(w, http.StatusOK, principal.User)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := utils.DecodeJSON(r, dst); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			utils.RespondError(w, http.StatusBadRequest, verrs[0].Field()+" is invalid")
			return false
		}
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func respondAuthError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, authService.ErrInvalidCredentials):
		utils.RespondError(w, http.StatusUnauthorized, authService.ErrInvalidCredentials.Error())
	case errors.Is(err, authService.ErrUnauthenticated):
		utils.RespondRedirect(w, http.StatusUnauthorized, "unauthenticated", authService.LoginRoute)
	case errors.Is(err, authService.ErrEmailTaken):
		utils.RespondError(w, http.StatusConflict, authService.ErrEmailTaken.Error())
	case errors.Is(err, authService.ErrWeakPassword):
		utils.RespondError(w, http.StatusBadRequest, authService.ErrWeakPassword.Error())
	default:
		slog.Error("auth request failed", "component", "auth", "action", action, "error", err)
		utils.RespondError(w, http.StatusBadGateway, "auth service unavailable")
	}
}

func setSessionCookie(w http.ResponseWriter, session modelauth.Session) {
	if session.AccessToken == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    session.AccessToken,
		Path:     "/",
		MaxAge:   session.ExpiresIn,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
