package inertia

import (
	"context"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// SessionCookie carries flash state to the next request.
const SessionCookie = "pingcrm_flash"

// Flash holds the one-shot messages shown by the layout.
type Flash struct {
	Success string `msgpack:"s,omitempty" json:"success"`
	Error   string `msgpack:"e,omitempty" json:"error"`
}

// Session is the state carried from one request to the next.
type Session struct {
	Flash  Flash             `msgpack:"f"`
	Errors map[string]string `msgpack:"v,omitempty"`
}

func (s *Session) empty() bool {
	return s.Flash == (Flash{}) && len(s.Errors) == 0
}

func encodeSession(s *Session) (string, error) {
	b, err := msgpack.Marshal(s)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func decodeSession(v string) (*Session, error) {
	b, err := base64.RawURLEncoding.DecodeString(v)
	if err != nil {
		return nil, err
	}
	var s Session
	if err := msgpack.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

type sessionState struct {
	incoming *Session
	outgoing *Session
	had      bool
}

type sessionKey struct{}

func stateFrom(ctx context.Context) *sessionState {
	if st, ok := ctx.Value(sessionKey{}).(*sessionState); ok {
		return st
	}
	return nil
}

func readSession(r *http.Request) *sessionState {
	st := &sessionState{incoming: &Session{}, outgoing: &Session{}}
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return st
	}
	st.had = true
	if s, err := decodeSession(c.Value); err == nil {
		st.incoming = s
	}
	return st
}

// writeSession stores the outgoing state, or expires a consumed cookie.
func (st *sessionState) write(w http.ResponseWriter, secure bool) {
	c := &http.Cookie{
		Name:     SessionCookie,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	switch {
	case !st.outgoing.empty():
		v, err := encodeSession(st.outgoing)
		if err != nil {
			return
		}
		c.Value = v
	case st.had:
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
	default:
		return
	}
	http.SetCookie(w, c)
}

// FlashSuccess sets the success message shown after the next redirect.
func FlashSuccess(r *http.Request, msg string) {
	if st := stateFrom(r.Context()); st != nil {
		st.outgoing.Flash.Success = msg
	}
}

// FlashError sets the error message shown after the next redirect.
func FlashError(r *http.Request, msg string) {
	if st := stateFrom(r.Context()); st != nil {
		st.outgoing.Flash.Error = msg
	}
}

// WithErrors stores field errors for the next request.
func WithErrors(r *http.Request, errs map[string]string) {
	st := stateFrom(r.Context())
	if st == nil {
		return
	}
	if st.outgoing.Errors == nil {
		st.outgoing.Errors = map[string]string{}
	}
	for k, v := range errs {
		st.outgoing.Errors[k] = v
	}
}

// Reflash keeps the incoming state for one more request.
func Reflash(r *http.Request) {
	if st := stateFrom(r.Context()); st != nil {
		st.outgoing = st.incoming
	}
}

// CurrentFlash returns the flash state that arrived with the request.
func CurrentFlash(r *http.Request) Flash {
	if st := stateFrom(r.Context()); st != nil {
		return st.incoming.Flash
	}
	return Flash{}
}

// CurrentErrors returns the field errors that arrived with the request.
func CurrentErrors(r *http.Request) map[string]string {
	if st := stateFrom(r.Context()); st != nil && st.incoming.Errors != nil {
		return st.incoming.Errors
	}
	return map[string]string{}
}
