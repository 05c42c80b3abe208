package handlers

import (
	"fmt"
	"net/http"

	"pingcrm-backend/internal/inertia"
	"pingcrm-backend/internal/models"
	"pingcrm-backend/internal/services"
)

func (h *Handler) ContactsIndex(w http.ResponseWriter, r *http.Request) {
	f := filters(r)
	f.Role = ""
	page, err := h.contacts.List(r.Context(), actor(r), f, pageParam(r))
	if err != nil {
		h.fail(w, r, err, "/")
		return
	}
	h.render(w, r, "Contacts/Index", inertia.Props{
		"filters": inertia.Props{"search": f.Search, "trashed": f.Trashed},
		"contacts": paginate(r, page, func(c models.Contact) inertia.Props {
			var org interface{}
			if c.Organization != nil {
				org = inertia.Props{"name": c.Organization.Name}
			}
			return inertia.Props{
				"id":           c.ID,
				"name":         c.Name(),
				"phone":        c.Phone,
				"city":         c.City,
				"deleted_at":   c.DeletedAt,
				"organization": org,
			}
		}),
	})
}

func (h *Handler) organizationRefs(w http.ResponseWriter, r *http.Request) ([]models.OrganizationRef, bool) {
	refs, err := h.orgs.Refs(r.Context(), actor(r))
	if err != nil {
		h.fail(w, r, err, "/contacts")
		return nil, false
	}
	return refs, true
}

func (h *Handler) ContactsCreate(w http.ResponseWriter, r *http.Request) {
	refs, ok := h.organizationRefs(w, r)
	if !ok {
		return
	}
	h.render(w, r, "Contacts/Create", inertia.Props{"organizations": refs})
}

func (h *Handler) decodeContact(w http.ResponseWriter, r *http.Request, back string) (services.ContactInput, bool) {
	var in services.ContactInput
	ok := h.decode(w, r, &in, back)
	return in, ok
}

func (h *Handler) ContactsStore(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeContact(w, r, "/contacts/create")
	if !ok {
		return
	}
	if _, err := h.contacts.Create(r.Context(), actor(r), in); err != nil {
		h.fail(w, r, err, "/contacts/create")
		return
	}
	inertia.FlashSuccess(r, "Contact created.")
	h.inertia.Redirect(w, r, "/contacts")
}

func (h *Handler) ContactsEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.notFound(w)
		return
	}
	c, err := h.contacts.Get(r.Context(), actor(r), id)
	if err != nil {
		h.fail(w, r, err, "/contacts")
		return
	}
	refs, ok := h.organizationRefs(w, r)
	if !ok {
		return
	}
	h.render(w, r, "Contacts/Edit", inertia.Props{
		"contact": inertia.Props{
			"id":              c.ID,
			"first_name":      c.FirstName,
			"last_name":       c.LastName,
			"organization_id": c.OrganizationID,
			"email":           c.Email,
			"phone":           c.Phone,
			"address":         c.Address,
			"city":            c.City,
			"region":          c.Region,
			"country":         c.Country,
			"postal_code":     c.PostalCode,
			"deleted_at":      c.DeletedAt,
		},
		"organizations": refs,
	})
}

func (h *Handler) ContactsUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.notFound(w)
		return
	}
	back := fmt.Sprintf("/contacts/%d/edit", id)
	in, ok := h.decodeContact(w, r, back)
	if !ok {
		return
	}
	if _, err := h.contacts.Update(r.Context(), actor(r), id, in); err != nil {
		h.fail(w, r, err, back)
		return
	}
	inertia.FlashSuccess(r, "Contact updated.")
	h.inertia.Back(w, r, back)
}

func (h *Handler) ContactsDestroy(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.notFound(w)
		return
	}
	back := fmt.Sprintf("/contacts/%d/edit", id)
	if err := h.contacts.Delete(r.Context(), actor(r), id); err != nil {
		h.fail(w, r, err, back)
		return
	}
	inertia.FlashSuccess(r, "Contact deleted.")
	h.inertia.Back(w, r, back)
}

func (h *Handler) ContactsRestore(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.notFound(w)
		return
	}
	back := fmt.Sprintf("/contacts/%d/edit", id)
	if err := h.contacts.Restore(r.Context(), actor(r), id); err != nil {
		h.fail(w, r, err, back)
		return
	}
	inertia.FlashSuccess(r, "Contact restored.")
	h.inertia.Back(w, r, back)
}
