package handlers

import (
	"fmt"
	"net/http"
	"net/url"

	"pingcrm-backend/internal/form"
	"pingcrm-backend/internal/inertia"
	"pingcrm-backend/internal/models"
	"pingcrm-backend/internal/services"
)

func photoURL(path string, size int) interface{} {
	if path == "" {
		return nil
	}
	q := url.Values{}
	q.Set("w", fmt.Sprint(size))
	q.Set("h", fmt.Sprint(size))
	q.Set("fit", "crop")
	return "/img/" + path + "?" + q.Encode()
}

func (h *Handler) UsersIndex(w http.ResponseWriter, r *http.Request) {
	f := filters(r)
	users, err := h.users.List(r.Context(), actor(r), f)
	if err != nil {
		h.fail(w, r, err, "/")
		return
	}

	rows := make([]inertia.Props, 0, len(users))
	for _, u := range users {
		rows = append(rows, inertia.Props{
			"id":         u.ID,
			"name":       u.Name(),
			"email":      u.Email,
			"owner":      u.Owner,
			"photo":      photoURL(u.PhotoPath, 40),
			"deleted_at": u.DeletedAt,
		})
	}
	h.render(w, r, "Users/Index", inertia.Props{
		"filters": f,
		"users":   rows,
	})
}

func (h *Handler) UsersCreate(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "Users/Create", nil)
}

func (h *Handler) decodeUser(w http.ResponseWriter, r *http.Request, back string) (services.UserInput, bool) {
	var in services.UserInput
	ok := h.decode(w, r, &in, back)
	return in, ok
}

func (h *Handler) UsersStore(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeUser(w, r, "/users/create")
	if !ok {
		return
	}
	photo, err := form.File(r, "photo")
	if err != nil {
		h.fail(w, r, err, "/users/create")
		return
	}
	if _, err := h.users.Create(r.Context(), actor(r), in, photo); err != nil {
		h.fail(w, r, err, "/users/create")
		return
	}
	inertia.FlashSuccess(r, "User created.")
	h.inertia.Redirect(w, r, "/users")
}

func (h *Handler) UsersEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.notFound(w)
		return
	}
	u, err := h.users.Get(r.Context(), actor(r), id)
	if err != nil {
		h.fail(w, r, err, "/users")
		return
	}
	h.render(w, r, "Users/Edit", inertia.Props{"user": userProps(u)})
}

func userProps(u *models.User) inertia.Props {
	return inertia.Props{
		"id":         u.ID,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"email":      u.Email,
		"owner":      u.Owner,
		"photo":      photoURL(u.PhotoPath, 60),
		"deleted_at": u.DeletedAt,
	}
}

func (h *Handler) UsersUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.notFound(w)
		return
	}
	back := fmt.Sprintf("/users/%d/edit", id)
	in, ok := h.decodeUser(w, r, back)
	if !ok {
		return
	}
	photo, err := form.File(r, "photo")
	if err != nil {
		h.fail(w, r, err, "/users")
		return
	}
	if _, err := h.users.Update(r.Context(), actor(r), id, in, photo); err != nil {
		h.fail(w, r, err, back)
		return
	}
	inertia.FlashSuccess(r, "User updated.")
	h.inertia.Back(w, r, back)
}

func (h *Handler) UsersDestroy(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.notFound(w)
		return
	}
	back := fmt.Sprintf("/users/%d/edit", id)
	if err := h.users.Delete(r.Context(), actor(r), id); err != nil {
		h.fail(w, r, err, back)
		return
	}
	inertia.FlashSuccess(r, "User deleted.")
	h.inertia.Back(w, r, back)
}

func (h *Handler) UsersRestore(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.notFound(w)
		return
	}
	back := fmt.Sprintf("/users/%d/edit", id)
	if err := h.users.Restore(r.Context(), actor(r), id); err != nil {
		h.fail(w, r, err, back)
		return
	}
	inertia.FlashSuccess(r, "User restored.")
	h.inertia.Back(w, r, back)
}
