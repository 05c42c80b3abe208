package inertia

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matryer/is"
)

func newTestInertia() *Inertia {
	i := New(context.TODO(), "v1")
	i.Share(func(r *http.Request) Props {
		return Props{"auth": map[string]interface{}{"user": nil}}
	})
	return i
}

func TestRenderJSON(t *testing.T) {
	is := is.New(t)
	i := newTestInertia()
	h := i.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		is.NoErr(i.Render(w, r, "Users/Index", Props{"users": []string{"a"}}))
	}))

	r := httptest.NewRequest(http.MethodGet, "/users?search=a", nil)
	r.Header.Set(HeaderInertia, "true")
	r.Header.Set(HeaderVersion, "v1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	is.Equal(w.Code, http.StatusOK)
	is.Equal(w.Header().Get(HeaderInertia), "true")
	is.Equal(w.Header().Get("Vary"), HeaderInertia)

	var page Page
	is.NoErr(json.Unmarshal(w.Body.Bytes(), &page))
	is.Equal(page.Component, "Users/Index")
	is.Equal(page.URL, "/users?search=a")
	is.Equal(page.Version, "v1")
	_, ok := page.Props["auth"]
	is.True(ok)
	_, ok = page.Props["errors"]
	is.True(ok)
	_, ok = page.Props["flash"]
	is.True(ok)
}

func TestRenderHTML(t *testing.T) {
	is := is.New(t)
	i := newTestInertia()
	h := i.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		is.NoErr(i.Render(w, r, "Dashboard/Index", nil))
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	is.Equal(w.Code, http.StatusOK)
	is.True(strings.HasPrefix(w.Header().Get("Content-Type"), "text/html"))
	body := w.Body.String()
	is.True(strings.Contains(body, `id="app"`))
	is.True(strings.Contains(body, "&#34;component&#34;:&#34;Dashboard/Index&#34;"))
}

func TestVersionMismatch(t *testing.T) {
	is := is.New(t)
	i := newTestInertia()
	called := false
	h := i.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	r := httptest.NewRequest(http.MethodGet, "/contacts", nil)
	r.Header.Set(HeaderInertia, "true")
	r.Header.Set(HeaderVersion, "old")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	is.True(!called)
	is.Equal(w.Code, http.StatusConflict)
	is.Equal(w.Header().Get(HeaderLocation), "/contacts")
}

func TestRedirectCodes(t *testing.T) {
	i := newTestInertia()
	cases := map[string]int{
		http.MethodPost:   http.StatusFound,
		http.MethodPut:    http.StatusSeeOther,
		http.MethodPatch:  http.StatusSeeOther,
		http.MethodDelete: http.StatusSeeOther,
	}
	for method, code := range cases {
		t.Run(method, func(t *testing.T) {
			is := is.New(t)
			w := httptest.NewRecorder()
			i.Redirect(w, httptest.NewRequest(method, "/users/1", nil), "/users")
			is.Equal(w.Code, code)
			is.Equal(w.Header().Get("Location"), "/users")
		})
	}
}

func TestBack(t *testing.T) {
	is := is.New(t)
	i := newTestInertia()

	r := httptest.NewRequest(http.MethodPut, "/users/1", nil)
	r.Header.Set("Referer", "/users/1/edit")
	w := httptest.NewRecorder()
	i.Back(w, r, "/")
	is.Equal(w.Header().Get("Location"), "/users/1/edit")

	w = httptest.NewRecorder()
	i.Back(w, httptest.NewRequest(http.MethodPut, "/users/1", nil), "/")
	is.Equal(w.Header().Get("Location"), "/")
}

func TestFlashRoundTrip(t *testing.T) {
	is := is.New(t)
	i := newTestInertia()

	mutate := i.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FlashSuccess(r, "User created.")
		WithErrors(r, map[string]string{"email": "The email field is required."})
		i.Redirect(w, r, "/users")
	}))
	w := httptest.NewRecorder()
	mutate.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/users", nil))
	is.Equal(w.Code, http.StatusFound)
	cookies := w.Result().Cookies()
	is.Equal(len(cookies), 1)

	show := i.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		is.NoErr(i.Render(w, r, "Users/Index", nil))
	}))
	r := httptest.NewRequest(http.MethodGet, "/users", nil)
	r.Header.Set(HeaderInertia, "true")
	r.Header.Set(HeaderVersion, "v1")
	r.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	show.ServeHTTP(w, r)

	var page struct {
		Props struct {
			Flash  Flash             `json:"flash"`
			Errors map[string]string `json:"errors"`
		} `json:"props"`
	}
	is.NoErr(json.Unmarshal(w.Body.Bytes(), &page))
	is.Equal(page.Props.Flash.Success, "User created.")
	is.Equal(page.Props.Errors["email"], "The email field is required.")

	// the flash is consumed
	cleared := w.Result().Cookies()
	is.Equal(len(cleared), 1)
	is.True(cleared[0].MaxAge < 0)
}

func TestPartialReload(t *testing.T) {
	is := is.New(t)
	i := newTestInertia()
	h := i.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		is.NoErr(i.Render(w, r, "Users/Index", Props{"users": 1, "filters": 2}))
	}))

	r := httptest.NewRequest(http.MethodGet, "/users", nil)
	r.Header.Set(HeaderInertia, "true")
	r.Header.Set(HeaderVersion, "v1")
	r.Header.Set(HeaderPartialComponent, "Users/Index")
	r.Header.Set(HeaderPartialData, "users")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	var page Page
	is.NoErr(json.Unmarshal(w.Body.Bytes(), &page))
	_, ok := page.Props["users"]
	is.True(ok)
	_, ok = page.Props["filters"]
	is.True(!ok)
}
