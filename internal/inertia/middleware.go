package inertia

import (
	"context"
	"net/http"
)

// sessionWriter saves the flash session right before the headers go out.
type sessionWriter struct {
	http.ResponseWriter
	state   *sessionState
	secure  bool
	written bool
}

func (w *sessionWriter) WriteHeader(code int) {
	if !w.written {
		w.written = true
		w.state.write(w.ResponseWriter, w.secure)
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *sessionWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Middleware loads the flash session, rejects stale asset versions and
// stores the session for the next request.
func (i *Inertia) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st := readSession(r)
		r = r.WithContext(context.WithValue(r.Context(), sessionKey{}, st))
		sw := &sessionWriter{ResponseWriter: w, state: st, secure: i.secure}

		if IsInertia(r) && r.Method == http.MethodGet &&
			r.Header.Get(HeaderVersion) != i.version {
			Reflash(r)
			i.Location(sw, r, r.URL.RequestURI())
			return
		}

		next.ServeHTTP(sw, r)
	})
}
