package handlers

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"pingcrm-backend/internal/filestore"
)

// maxImageSize bounds the w and h parameters.
const maxImageSize = 2000

var imageFits = map[string]bool{
	"contain": true,
	"max":     true,
	"fill":    true,
	"stretch": true,
	"crop":    true,
}

type imageParams struct {
	w, h int
	fit  string
}

func parseImageParams(r *http.Request) (imageParams, error) {
	q := r.URL.Query()
	var p imageParams
	for _, dim := range []struct {
		name string
		dst  *int
	}{{"w", &p.w}, {"h", &p.h}} {
		v := q.Get(dim.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxImageSize {
			return p, fmt.Errorf("invalid %s", dim.name)
		}
		*dim.dst = n
	}
	p.fit = q.Get("fit")
	if p.fit != "" && !imageFits[p.fit] {
		return p, fmt.Errorf("invalid fit")
	}
	return p, nil
}

// Image streams a stored photo of the signed in user's account.
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean("/"+chi.URLParam(r, "*")), "/")
	params, err := parseImageParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	prefix := fmt.Sprintf("users/%d/", actor(r).AccountID)
	if !strings.HasPrefix(name, prefix) {
		h.notFound(w)
		return
	}

	f, modTime, err := h.files.Open(r.Context(), name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, filestore.ErrInvalidPath) {
			h.notFound(w)
			return
		}
		h.fail(w, r, err, "/")
		return
	}
	defer f.Close() //nolint:errcheck

	w.Header().Set("Cache-Control", "private, max-age=31536000")
	w.Header().Set("ETag", fmt.Sprintf(`"%x-%d-%d-%s"`, modTime.UnixNano(), params.w, params.h, params.fit))
	http.ServeContent(w, r, name, modTime, f)
}
