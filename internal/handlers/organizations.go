package handlers

import (
	"fmt"
	"net/http"

	"pingcrm-backend/internal/inertia"
	"pingcrm-backend/internal/models"
	"pingcrm-backend/internal/services"
)

func (h *Handler) OrganizationsIndex(w http.ResponseWriter, r *http.Request) {
	f := filters(r)
	f.Role = ""
	page, err := h.orgs.List(r.Context(), actor(r), f, pageParam(r))
	if err != nil {
		h.fail(w, r, err, "/")
		return
	}
	h.render(w, r, "Organizations/Index", inertia.Props{
		"filters": inertia.Props{"search": f.Search, "trashed": f.Trashed},
		"organizations": paginate(r, page, func(o models.Organization) inertia.Props {
			return inertia.Props{
				"id":         o.ID,
				"name":       o.Name,
				"phone":      o.Phone,
				"city":       o.City,
				"deleted_at": o.DeletedAt,
			}
		}),
	})
}

func (h *Handler) OrganizationsCreate(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "Organizations/Create", nil)
}

func (h *Handler) decodeOrganization(w http.ResponseWriter, r *http.Request, back string) (services.OrganizationInput, bool) {
	var in services.OrganizationInput
	ok := h.decode(w, r, &in, back)
	return in, ok
}

func (h *Handler) OrganizationsStore(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeOrganization(w, r, "/organizations/create")
	if !ok {
		return
	}
	if _, err := h.orgs.Create(r.Context(), actor(r), in); err != nil {
		h.fail(w, r, err, "/organizations/create")
		return
	}
	inertia.FlashSuccess(r, "Organization created.")
	h.inertia.Redirect(w, r, "/organizations")
}

func (h *Handler) OrganizationsEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.notFound(w)
		return
	}
	o, contacts, err := h.orgs.Get(r.Context(), actor(r), id)
	if err != nil {
		h.fail(w, r, err, "/organizations")
		return
	}

	rows := make([]inertia.Props, 0, len(contacts))
	for _, c := range contacts {
		rows = append(rows, inertia.Props{
			"id":    c.ID,
			"name":  c.Name(),
			"city":  c.City,
			"phone": c.Phone,
		})
	}
	h.render(w, r, "Organizations/Edit", inertia.Props{
		"organization": inertia.Props{
			"id":          o.ID,
			"name":        o.Name,
			"email":       o.Email,
			"phone":       o.Phone,
			"address":     o.Address,
			"city":        o.City,
			"region":      o.Region,
			"country":     o.Country,
			"postal_code": o.PostalCode,
			"deleted_at":  o.DeletedAt,
			"contacts":    rows,
		},
	})
}

func (h *Handler) OrganizationsUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.notFound(w)
		return
	}
	back := fmt.Sprintf("/organizations/%d/edit", id)
	in, ok := h.decodeOrganization(w, r, back)
	if !ok {
		return
	}
	if _, err := h.orgs.Update(r.Context(), actor(r), id, in); err != nil {
		h.fail(w, r, err, back)
		return
	}
	inertia.FlashSuccess(r, "Organization updated.")
	h.inertia.Back(w, r, back)
}

func (h *Handler) OrganizationsDestroy(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.notFound(w)
		return
	}
	back := fmt.Sprintf("/organizations/%d/edit", id)
	if err := h.orgs.Delete(r.Context(), actor(r), id); err != nil {
		h.fail(w, r, err, back)
		return
	}
	inertia.FlashSuccess(r, "Organization deleted.")
	h.inertia.Back(w, r, back)
}

func (h *Handler) OrganizationsRestore(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.notFound(w)
		return
	}
	back := fmt.Sprintf("/organizations/%d/edit", id)
	if err := h.orgs.Restore(r.Context(), actor(r), id); err != nil {
		h.fail(w, r, err, back)
		return
	}
	inertia.FlashSuccess(r, "Organization restored.")
	h.inertia.Back(w, r, back)
}
