// Package handlers serves the CRM pages and mutations over HTTP.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"pingcrm-backend/internal/auth"
	"pingcrm-backend/internal/db"
	"pingcrm-backend/internal/filestore"
	"pingcrm-backend/internal/form"
	"pingcrm-backend/internal/inertia"
	"pingcrm-backend/internal/models"
	"pingcrm-backend/internal/services"
	"pingcrm-backend/internal/storage"
	"pingcrm-backend/internal/validation"
)

type Handler struct {
	inertia  *inertia.Inertia
	auth     *auth.Service
	users    *services.UserService
	orgs     *services.OrganizationService
	contacts *services.ContactService
	files    filestore.Store
	db       *db.DB
	logger   *log.Logger
}

// Options are the dependencies of a Handler.
type Options struct {
	Inertia       *inertia.Inertia
	Auth          *auth.Service
	Users         *services.UserService
	Organizations *services.OrganizationService
	Contacts      *services.ContactService
	Files         filestore.Store
	DB            *db.DB
	Logger        *log.Logger
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		inertia:  opts.Inertia,
		auth:     opts.Auth,
		users:    opts.Users,
		orgs:     opts.Organizations,
		contacts: opts.Contacts,
		files:    opts.Files,
		db:       opts.DB,
		logger:   logger.WithPrefix("http"),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Health)

	authHandler := auth.NewHandler(h.auth, h.inertia)
	r.Group(func(r chi.Router) {
		r.Use(auth.RedirectIfAuthenticated)
		r.Get("/login", authHandler.LoginPage)
		r.Post("/login", authHandler.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)

		r.Delete("/logout", authHandler.Logout)
		r.Post("/logout", authHandler.Logout)

		r.Get("/", h.Dashboard)
		r.Get("/reports", h.Reports)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.UsersIndex)
			r.Get("/create", h.UsersCreate)
			r.Post("/", h.UsersStore)
			r.Get("/{id}/edit", h.UsersEdit)
			r.Put("/{id}", h.UsersUpdate)
			r.Delete("/{id}", h.UsersDestroy)
			r.Put("/{id}/restore", h.UsersRestore)
		})

		r.Route("/organizations", func(r chi.Router) {
			r.Get("/", h.OrganizationsIndex)
			r.Get("/create", h.OrganizationsCreate)
			r.Post("/", h.OrganizationsStore)
			r.Get("/{id}/edit", h.OrganizationsEdit)
			r.Put("/{id}", h.OrganizationsUpdate)
			r.Delete("/{id}", h.OrganizationsDestroy)
			r.Put("/{id}/restore", h.OrganizationsRestore)
		})

		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", h.ContactsIndex)
			r.Get("/create", h.ContactsCreate)
			r.Post("/", h.ContactsStore)
			r.Get("/{id}/edit", h.ContactsEdit)
			r.Put("/{id}", h.ContactsUpdate)
			r.Delete("/{id}", h.ContactsDestroy)
			r.Put("/{id}/restore", h.ContactsRestore)
		})

		r.Get("/img/*", h.Image)
	})
}

// actor is the signed in user. Routes using it sit behind auth.RequireAuth.
func actor(r *http.Request) *models.User {
	id, _ := auth.IdentityFromContext(r.Context())
	return id.User
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func filters(r *http.Request) models.Filters {
	q := r.URL.Query()
	return models.Filters{
		Search:  q.Get("search"),
		Role:    q.Get("role"),
		Trashed: models.ParseTrashed(q.Get("trashed")),
	}
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, component string, props inertia.Props) {
	if err := h.inertia.Render(w, r, component, props); err != nil {
		h.logger.Error("render", "component", component, "err", err)
	}
}

func (h *Handler) notFound(w http.ResponseWriter) {
	http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
}

// decode fills dst from the request body. Values that do not convert to
// their field go back to the form as validation errors.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}, back string) bool {
	err := form.Decode(r, dst)
	if err == nil {
		return true
	}
	if _, ok := validation.AsErrors(err); ok {
		h.fail(w, r, err, back)
		return false
	}
	h.logger.Debug("decode request body", "path", r.URL.Path, "err", err)
	http.Error(w, "Invalid request body", http.StatusBadRequest)
	return false
}

// fail answers a failed mutation. Validation and guard errors go back to the
// form, missing records are 404 and anything else is a 500.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, back string) {
	var guard *services.GuardError
	if errs, ok := validation.AsErrors(err); ok {
		inertia.WithErrors(r, errs)
		h.inertia.Back(w, r, back)
		return
	}
	switch {
	case errors.As(err, &guard):
		inertia.FlashError(r, guard.Message)
		h.inertia.Back(w, r, back)
	case errors.Is(err, storage.ErrNotFound):
		h.notFound(w)
	default:
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// SharedProps adds the signed in user to every page.
func SharedProps(r *http.Request) inertia.Props {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return inertia.Props{"auth": inertia.Props{"user": nil}}
	}
	return inertia.Props{"auth": inertia.Props{"user": inertia.Props{
		"id":         id.User.ID,
		"first_name": id.User.FirstName,
		"last_name":  id.User.LastName,
		"email":      id.User.Email,
		"owner":      id.User.Owner,
		"account": inertia.Props{
			"id":   id.Account.ID,
			"name": id.Account.Name,
		},
	}}}
}
