package auth

import (
	"errors"
	"net/http"

	"pingcrm-backend/internal/form"
	"pingcrm-backend/internal/inertia"
	"pingcrm-backend/internal/middleware"
	"pingcrm-backend/internal/validation"
)

// Handler serves the login and logout routes.
type Handler struct {
	svc     *Service
	inertia *inertia.Inertia
}

// NewHandler returns a Handler.
func NewHandler(svc *Service, i *inertia.Inertia) *Handler {
	return &Handler{svc: svc, inertia: i}
}

// LoginPage renders the login form.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if err := h.inertia.Render(w, r, "Auth/Login", nil); err != nil {
		h.svc.logger.Error("render login", "err", err)
	}
}

// Login signs the user in and redirects to the dashboard. Failures go back
// to the form with the message on the email field.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if err := form.Decode(r, &creds); err != nil {
		if errs, ok := validation.AsErrors(err); ok {
			inertia.WithErrors(r, errs)
			h.inertia.Back(w, r, "/login")
			return
		}
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	creds.IP = middleware.ClientIP(r)

	sess, err := h.svc.Authenticate(r.Context(), creds)
	if err != nil {
		var throttled *ThrottleError
		switch errs, ok := validation.AsErrors(err); {
		case ok:
			inertia.WithErrors(r, errs)
		case errors.As(err, &throttled), errors.Is(err, ErrInvalidCredentials):
			inertia.WithErrors(r, map[string]string{"email": err.Error()})
		default:
			h.svc.logger.Error("login", "err", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		h.inertia.Back(w, r, "/login")
		return
	}

	h.svc.SetCookie(w, sess)
	h.inertia.Redirect(w, r, "/")
}

// Logout revokes the session token, clears the cookie and redirects home.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(r.Context(), requestToken(r)); err != nil {
		h.svc.logger.Error("logout", "err", err)
	}
	h.svc.ClearCookie(w)
	h.inertia.Redirect(w, r, "/")
}
