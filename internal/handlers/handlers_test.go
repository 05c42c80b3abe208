package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/matryer/is"

	"pingcrm-backend/internal/auth"
	"pingcrm-backend/internal/cache"
	"pingcrm-backend/internal/filestore"
	"pingcrm-backend/internal/inertia"
	"pingcrm-backend/internal/middleware"
	"pingcrm-backend/internal/models"
	"pingcrm-backend/internal/ratelimit"
	"pingcrm-backend/internal/services"
	"pingcrm-backend/internal/storage"
	"pingcrm-backend/internal/testutil"
)

const (
	demoEmail = "johndoe@example.com"
	testIP    = "192.0.2.1"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type app struct {
	t       *testing.T
	handler http.Handler
	store   *storage.Storage
	limiter *ratelimit.Limiter
	cookies map[string]*http.Cookie
}

func newApp(t *testing.T, perMinute int, trustedProxies ...string) *app {
	t.Helper()
	ctx := log.WithContext(context.Background(), log.New(io.Discard))
	dbx := testutil.OpenMigrated(t)

	hash, err := auth.HashPassword("secret")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := storage.Seed(ctx, dbx, storage.SeedOptions{AccountName: "Acme Corporation", DemoEmail: demoEmail, PasswordHash: hash}); err != nil {
		t.Fatal(err)
	}

	counters, err := cache.NewMemoryCache(0)
	if err != nil {
		t.Fatal(err)
	}
	files, err := filestore.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	tokens, err := auth.NewTokens("test-secret", "pingcrm")
	if err != nil {
		t.Fatal(err)
	}

	proxies, err := middleware.ParseTrustedProxies(trustedProxies)
	if err != nil {
		t.Fatal(err)
	}

	store := storage.New(dbx)
	limiter := ratelimit.New(counters, time.Minute)
	logger := log.New(io.Discard)
	deps := services.Deps{DB: dbx, Logger: logger}
	h := New(Options{
		Inertia:       inertia.New(ctx, "1"),
		Auth:          auth.NewService(ctx, store, limiter, tokens, auth.Options{MaxAttempts: 5, Revocations: counters}),
		Users:         services.NewUserService(deps, files, demoEmail),
		Organizations: services.NewOrganizationService(deps),
		Contacts:      services.NewContactService(deps),
		Files:         files,
		DB:            dbx,
		Logger:        logger,
	})

	return &app{
		t:       t,
		handler: NewRouter(h, RouterOptions{Limiter: limiter, PerMinute: perMinute, TrustedProxies: proxies}),
		store:   store,
		limiter: limiter,
		cookies: map[string]*http.Cookie{},
	}
}

func (a *app) do(r *http.Request) *httptest.ResponseRecorder {
	a.t.Helper()
	for _, c := range a.cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, r)
	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(a.cookies, c.Name)
			continue
		}
		a.cookies[c.Name] = c
	}
	return w
}

func (a *app) send(method, path string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			a.t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	r := httptest.NewRequest(method, path, rd)
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set(inertia.HeaderInertia, "true")
	return a.do(r)
}

type page struct {
	Component string          `json:"component"`
	Props     json.RawMessage `json:"props"`
}

type common struct {
	Auth struct {
		User *struct {
			ID      int64  `json:"id"`
			Email   string `json:"email"`
			Account struct {
				Name string `json:"name"`
			} `json:"account"`
		} `json:"user"`
	} `json:"auth"`
	Flash  inertia.Flash     `json:"flash"`
	Errors map[string]string `json:"errors"`
}

// visit loads a page as the client-side router does and decodes its props.
func (a *app) visit(path string, props interface{}) string {
	a.t.Helper()
	r := httptest.NewRequest(http.MethodGet, path, nil)
	r.Header.Set(inertia.HeaderInertia, "true")
	r.Header.Set(inertia.HeaderVersion, "1")
	w := a.do(r)
	if w.Code != http.StatusOK {
		a.t.Fatalf("GET %s: status %d, location %q", path, w.Code, w.Header().Get("Location"))
	}
	var p page
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		a.t.Fatal(err)
	}
	if props != nil {
		if err := json.Unmarshal(p.Props, props); err != nil {
			a.t.Fatal(err)
		}
	}
	return p.Component
}

func (a *app) login(email, password string) *httptest.ResponseRecorder {
	a.t.Helper()
	return a.send(http.MethodPost, "/login", map[string]interface{}{"email": email, "password": password})
}

// loginFrom posts credentials with the given X-Forwarded-For header.
func (a *app) loginFrom(forwardedFor, email, password string) *httptest.ResponseRecorder {
	a.t.Helper()
	b, err := json.Marshal(map[string]interface{}{"email": email, "password": password})
	if err != nil {
		a.t.Fatal(err)
	}
	r := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(b))
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set(inertia.HeaderInertia, "true")
	r.Header.Set("X-Forwarded-For", forwardedFor)
	return a.do(r)
}

func (a *app) loginDemo() {
	a.t.Helper()
	w := a.login(demoEmail, "secret")
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
		a.t.Fatalf("login: status %d, location %q", w.Code, w.Header().Get("Location"))
	}
}

func (a *app) demo() *models.User {
	a.t.Helper()
	u, err := a.store.GetUserByEmail(context.TODO(), demoEmail)
	if err != nil {
		a.t.Fatal(err)
	}
	return u
}

func TestGuestIsRedirectedToLogin(t *testing.T) {
	is := is.New(t)
	a := newApp(t, 0)

	for _, path := range []string{"/", "/users", "/organizations", "/contacts/create", "/reports"} {
		w := a.do(httptest.NewRequest(http.MethodGet, path, nil))
		is.Equal(w.Code, http.StatusFound)
		is.Equal(w.Header().Get("Location"), "/login")
	}

	is.Equal(a.visit("/login", nil), "Auth/Login")
}

func TestLoginLogout(t *testing.T) {
	is := is.New(t)
	a := newApp(t, 0)
	a.loginDemo()
	is.True(a.cookies[auth.CookieName] != nil)

	var props common
	is.Equal(a.visit("/", &props), "Dashboard/Index")
	is.True(props.Auth.User != nil)
	is.Equal(props.Auth.User.Email, demoEmail)
	is.Equal(props.Auth.User.Account.Name, "Acme Corporation")

	w := a.do(httptest.NewRequest(http.MethodGet, "/login", nil))
	is.Equal(w.Code, http.StatusFound)
	is.Equal(w.Header().Get("Location"), "/")

	w = a.send(http.MethodDelete, "/logout", nil)
	is.Equal(w.Code, http.StatusSeeOther)
	is.Equal(w.Header().Get("Location"), "/")
	is.True(a.cookies[auth.CookieName] == nil)

	w = a.do(httptest.NewRequest(http.MethodGet, "/", nil))
	is.Equal(w.Header().Get("Location"), "/login")
}

func TestLogoutRevokesToken(t *testing.T) {
	is := is.New(t)
	a := newApp(t, 0)
	a.loginDemo()
	session := a.cookies[auth.CookieName]
	is.True(session != nil)

	w := a.send(http.MethodDelete, "/logout", nil)
	is.Equal(w.Code, http.StatusSeeOther)

	// replaying the old cookie does not sign the user back in
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(session)
	w = a.do(r)
	is.Equal(w.Code, http.StatusFound)
	is.Equal(w.Header().Get("Location"), "/login")

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+session.Value)
	w = a.do(r)
	is.Equal(w.Header().Get("Location"), "/login")

	// a fresh login works again
	a.loginDemo()
	is.Equal(a.visit("/", &common{}), "Dashboard/Index")
}

func TestRememberedLoginIsPersistent(t *testing.T) {
	is := is.New(t)
	a := newApp(t, 0)
	w := a.send(http.MethodPost, "/login", map[string]interface{}{"email": demoEmail, "password": "secret", "remember": true})
	is.Equal(w.Code, http.StatusFound)
	c := a.cookies[auth.CookieName]
	is.True(c != nil)
	is.True(c.MaxAge > 29*24*60*60)

	a = newApp(t, 0)
	a.loginDemo()
	is.Equal(a.cookies[auth.CookieName].MaxAge, 0) // browser session
}

func TestLoginValidation(t *testing.T) {
	is := is.New(t)
	a := newApp(t, 0)

	w := a.login("", "")
	is.Equal(w.Code, http.StatusFound)
	is.Equal(w.Header().Get("Location"), "/login")

	var props common
	a.visit("/login", &props)
	is.Equal(props.Errors["email"], "The email field is required.")
	is.Equal(props.Errors["password"], "The password field is required.")

	w = a.send(http.MethodPost, "/login", map[string]interface{}{"email": demoEmail, "password": "secret", "remember": "maybe"})
	is.Equal(w.Code, http.StatusFound)
	is.Equal(w.Header().Get("Location"), "/login")
	is.True(a.cookies[auth.CookieName] == nil)
	props = common{}
	a.visit("/login", &props)
	is.Equal(props.Errors["remember"], "The remember field must be true or false.")
}

func TestLoginThrottle(t *testing.T) {
	is := is.New(t)
	a := newApp(t, 0)
	var props common

	for i := 0; i < 5; i++ {
		a.login(demoEmail, "wrong")
		a.visit("/login", &props)
		is.Equal(props.Errors["email"], "These credentials do not match our records.")
	}

	// the correct password is not even checked while locked out
	a.login(demoEmail, "secret")
	props = common{}
	a.visit("/login", &props)
	is.True(strings.HasPrefix(props.Errors["email"], "Too many login attempts. Please try again in "))
	is.True(a.cookies[auth.CookieName] == nil)

	// keyed by email, so the same ip can still sign in as someone else
	n, err := a.limiter.Attempts(context.TODO(), auth.ThrottleKey("other@example.com", testIP))
	is.NoErr(err)
	is.Equal(n, int64(0))
}

func TestLoginThrottleIgnoresForwardedFor(t *testing.T) {
	is := is.New(t)
	a := newApp(t, 0)

	for i := 0; i < 20; i++ {
		w := a.loginFrom("203.0.113."+strconv.Itoa(i+1), demoEmail, "wrong")
		is.Equal(w.Code, http.StatusFound)
	}

	w := a.loginFrom("198.51.100.1", demoEmail, "secret")
	is.Equal(w.Code, http.StatusFound)
	is.Equal(w.Header().Get("Location"), "/login")
	is.True(a.cookies[auth.CookieName] == nil)

	var props common
	a.visit("/login", &props)
	is.True(strings.HasPrefix(props.Errors["email"], "Too many login attempts. Please try again in "))

	// attempts are counted against the socket address
	n, err := a.limiter.Attempts(context.TODO(), auth.ThrottleKey(demoEmail, testIP))
	is.NoErr(err)
	is.Equal(n, int64(5))
}

func TestLoginThrottleBehindTrustedProxy(t *testing.T) {
	is := is.New(t)
	a := newApp(t, 0, testIP)

	for i := 0; i < 5; i++ {
		a.loginFrom("203.0.113.1", demoEmail, "wrong")
	}
	n, err := a.limiter.Attempts(context.TODO(), auth.ThrottleKey(demoEmail, "203.0.113.1"))
	is.NoErr(err)
	is.Equal(n, int64(5))

	w := a.loginFrom("203.0.113.1", demoEmail, "secret")
	is.Equal(w.Header().Get("Location"), "/login")

	// a forged hop in front of the proxy does not change the client
	w = a.loginFrom("6.6.6.6, 203.0.113.1", demoEmail, "secret")
	is.Equal(w.Header().Get("Location"), "/login")

	// the proxy reports a different client, which is not locked out
	w = a.loginFrom("203.0.113.2", demoEmail, "secret")
	is.Equal(w.Code, http.StatusFound)
	is.Equal(w.Header().Get("Location"), "/")
}

func TestSuccessfulLoginClearsAttempts(t *testing.T) {
	is := is.New(t)
	a := newApp(t, 0)
	key := auth.ThrottleKey(demoEmail, testIP)

	for i := 0; i < 3; i++ {
		a.login(strings.ToUpper(demoEmail), "wrong")
	}
	n, err := a.limiter.Attempts(context.TODO(), key)
	is.NoErr(err)
	is.Equal(n, int64(3))

	a.loginDemo()
	n, err = a.limiter.Attempts(context.TODO(), key)
	is.NoErr(err)
	is.Equal(n, int64(0))
}

func TestDemoUserCannotBeChanged(t *testing.T) {
	is := is.New(t)
	a := newApp(t, 0)
	a.loginDemo()
	demo := a.demo()
	path := "/users/" + itoa(demo.ID)

	w := a.send(http.MethodPut, path, map[string]interface{}{
		"first_name": "Changed", "last_name": "User", "email": "changed@example.com",
	})
	is.Equal(w.Code, http.StatusSeeOther)
	var props common
	a.visit(path+"/edit", &props)
	is.Equal(props.Flash.Error, "Updating the demo user is not allowed.")

	w = a.send(http.MethodDelete, path, nil)
	is.Equal(w.Code, http.StatusSeeOther)
	props = common{}
	a.visit(path+"/edit", &props)
	is.Equal(props.Flash.Error, "Deleting the demo user is not allowed.")

	after := a.demo()
	is.Equal(after.FirstName, demo.FirstName)
	is.Equal(after.Email, demo.Email)
	is.True(after.DeletedAt == nil)
}

func TestUsersIndexFilters(t *testing.T) {
	is := is.New(t)
	a := newApp(t, 0)
	a.loginDemo()

	w := a.send(http.MethodPost, "/users", map[string]interface{}{
		"first_name": "Jane", "last_name": "Roe", "email": "jane@example.com", "owner": false,
	})
	is.Equal(w.Code, http.StatusFound)
	is.Equal(w.Header().Get("Location"), "/users")

	var props struct {
		common
		Users []struct {
			Name  string  `json:"name"`
			Owner bool    `json:"owner"`
			Photo *string `json:"photo"`
		} `json:"users"`
		Filters models.Filters `json:"filters"`
	}
	is.Equal(a.visit("/users", &props), "Users/Index")
	is.Equal(props.Flash.Success, "User created.")
	is.Equal(len(props.Users), 2)
	is.Equal(props.Users[0].Name, "John Doe") // Doe before Roe
	is.True(props.Users[0].Photo == nil)

	a.visit("/users?role=user", &props)
	is.Equal(len(props.Users), 1)
	is.Equal(props.Users[0].Name, "Jane Roe")
	is.Equal(props.Filters.Role, "user")

	a.visit("/users?search=JANE", &props)
	is.Equal(len(props.Users), 1)

	a.visit("/users?search=nobody", &props)
	is.Equal(len(props.Users), 0)
}

func TestOrganizationSearch(t *testing.T) {
	is := is.New(t)
	a := newApp(t, 0)
	a.loginDemo()

	w := a.send(http.MethodPost, "/organizations", map[string]interface{}{"name": "Apple", "phone": "647-943-4400"})
	is.Equal(w.Code, http.StatusFound)
	is.Equal(w.Header().Get("Location"), "/organizations")

	var props struct {
		common
		Organizations struct {
			Data []struct {
				Name      string     `json:"name"`
				Phone     string     `json:"phone"`
				DeletedAt *time.Time `json:"deleted_at"`
			} `json:"data"`
			Links []Link `json:"links"`
		} `json:"organizations"`
	}
	is.Equal(a.visit("/organizations?search=Apple", &props), "Organizations/Index")
	is.Equal(props.Flash.Success, "Organization created.")
	is.Equal(len(props.Organizations.Data), 1)
	is.Equal(props.Organizations.Data[0].Name, "Apple")
	is.Equal(props.Organizations.Data[0].Phone, "647-943-4400")
	is.True(props.Organizations.Data[0].DeletedAt == nil)
	is.Equal(len(props.Organizations.Links), 3) // previous, 1, next
}

func TestContactOrganizationField(t *testing.T) {
	is := is.New(t)
	a := newApp(t, 0)
	a.loginDemo()

	w := a.send(http.MethodPost, "/contacts", map[string]interface{}{
		"first_name": "Ann", "last_name": "Lee", "organization_id": 9999,
	})
	is.Equal(w.Code, http.StatusFound)
	is.Equal(w.Header().Get("Location"), "/contacts/create")
	var props common
	a.visit("/contacts/create", &props)
	is.Equal(props.Errors["organization_id"], "The selected organization id is invalid.")

	w = a.send(http.MethodPost, "/contacts", map[string]interface{}{"first_name": "Ann", "last_name": "Lee"})
	is.Equal(w.Header().Get("Location"), "/contacts")

	p, err := a.store.ListContacts(context.TODO(), a.demo().AccountID, models.Filters{Search: "Ann Lee"}, 1, 0)
	is.NoErr(err)
	is.Equal(len(p.Items), 1)
	is.True(p.Items[0].OrganizationID == nil)
}

func TestMistypedFieldsGoBackToForm(t *testing.T) {
	is := is.New(t)
	a := newApp(t, 0)
	a.loginDemo()

	w := a.send(http.MethodPost, "/contacts", map[string]interface{}{
		"first_name": "Ann", "last_name": "Lee", "organization_id": "abc",
	})
	is.Equal(w.Code, http.StatusFound)
	is.Equal(w.Header().Get("Location"), "/contacts/create")
	var props common
	a.visit("/contacts/create", &props)
	is.Equal(props.Errors["organization_id"], "The selected organization id is invalid.")

	w = a.send(http.MethodPost, "/users", map[string]interface{}{
		"first_name": "Ann", "last_name": "Lee", "email": "ann@example.com", "owner": "yes",
	})
	is.Equal(w.Code, http.StatusFound)
	is.Equal(w.Header().Get("Location"), "/users/create")
	props = common{}
	a.visit("/users/create", &props)
	is.Equal(props.Errors["owner"], "The owner field must be true or false.")

	// nothing was stored
	_, err := a.store.GetUserByEmail(context.TODO(), "ann@example.com")
	is.True(errors.Is(err, storage.ErrNotFound))
}

func TestContactSoftDeleteRestore(t *testing.T) {
	is := is.New(t)
	a := newApp(t, 0)
	a.loginDemo()
	ctx := context.TODO()

	c := &models.Contact{AccountID: a.demo().AccountID, FirstName: "Zed", LastName: "Zulu"}
	is.NoErr(a.store.CreateContact(ctx, c))
	path := "/contacts/" + itoa(c.ID)

	type listing struct {
		common
		Contacts struct {
			Data []struct {
				ID           int64      `json:"id"`
				DeletedAt    *time.Time `json:"deleted_at"`
				Organization *struct {
					Name string `json:"name"`
				} `json:"organization"`
			} `json:"data"`
			Total int `json:"total"`
		} `json:"contacts"`
	}

	w := a.send(http.MethodDelete, path, nil)
	is.Equal(w.Code, http.StatusSeeOther)

	var only listing
	a.visit("/contacts?trashed=only", &only)
	is.Equal(only.Flash.Success, "Contact deleted.")
	is.Equal(len(only.Contacts.Data), 1)
	is.Equal(only.Contacts.Data[0].ID, c.ID)
	is.True(only.Contacts.Data[0].DeletedAt != nil)

	var active, with listing
	a.visit("/contacts", &active)
	a.visit("/contacts?trashed=with", &with)
	is.Equal(active.Contacts.Total+only.Contacts.Total, with.Contacts.Total)

	w = a.send(http.MethodPut, path+"/restore", nil)
	is.Equal(w.Code, http.StatusSeeOther)
	var edit struct {
		common
		Contact struct {
			DeletedAt *time.Time `json:"deleted_at"`
		} `json:"contact"`
	}
	is.Equal(a.visit(path+"/edit", &edit), "Contacts/Edit")
	is.Equal(edit.Flash.Success, "Contact restored.")
	is.True(edit.Contact.DeletedAt == nil)

	// seeded contacts carry their organization name
	var first listing
	a.visit("/contacts?search=alice", &first)
	is.Equal(len(first.Contacts.Data), 1)
	is.Equal(first.Contacts.Data[0].Organization.Name, "Bartell Group")
}

func TestOtherAccountIsNotFound(t *testing.T) {
	is := is.New(t)
	a := newApp(t, 0)
	a.loginDemo()
	ctx := context.TODO()

	other, err := a.store.CreateAccount(ctx, "Other")
	is.NoErr(err)
	org := &models.Organization{AccountID: other.ID, Name: "Hidden"}
	is.NoErr(a.store.CreateOrganization(ctx, org))

	r := httptest.NewRequest(http.MethodGet, "/organizations/"+itoa(org.ID)+"/edit", nil)
	r.Header.Set(inertia.HeaderInertia, "true")
	r.Header.Set(inertia.HeaderVersion, "1")
	w := a.do(r)
	is.Equal(w.Code, http.StatusNotFound)

	w = a.send(http.MethodDelete, "/organizations/"+itoa(org.ID), nil)
	is.Equal(w.Code, http.StatusNotFound)
}

func multipartRequest(t *testing.T, path string, fields map[string]string, photo []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if photo != nil {
		fw, err := mw.CreateFormFile("photo", "photo.png")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(photo); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	r := httptest.NewRequest(http.MethodPost, path, &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	r.Header.Set(inertia.HeaderInertia, "true")
	return r
}

func TestUserPhotoUploadAndImage(t *testing.T) {
	is := is.New(t)
	a := newApp(t, 0)
	a.loginDemo()

	w := a.do(multipartRequest(t, "/users", map[string]string{
		"first_name": "Pat", "last_name": "Kim", "email": "pat@example.com", "owner": "1",
	}, pngHeader))
	is.Equal(w.Code, http.StatusFound)

	var props struct {
		Users []struct {
			Name  string  `json:"name"`
			Owner bool    `json:"owner"`
			Photo *string `json:"photo"`
		} `json:"users"`
	}
	a.visit("/users?search=pat", &props)
	is.Equal(len(props.Users), 1)
	is.True(props.Users[0].Owner)
	is.True(props.Users[0].Photo != nil)
	photo := *props.Users[0].Photo
	is.True(strings.HasPrefix(photo, "/img/users/1/"))
	is.True(strings.HasSuffix(photo, "?fit=crop&h=40&w=40"))

	w = a.do(httptest.NewRequest(http.MethodGet, photo, nil))
	is.Equal(w.Code, http.StatusOK)
	is.Equal(w.Body.Bytes(), pngHeader)
	is.True(w.Header().Get("ETag") != "")

	imgPath := strings.SplitN(photo, "?", 2)[0]
	w = a.do(httptest.NewRequest(http.MethodGet, imgPath+"?w=5000", nil))
	is.Equal(w.Code, http.StatusBadRequest)
	w = a.do(httptest.NewRequest(http.MethodGet, imgPath+"?fit=zoom", nil))
	is.Equal(w.Code, http.StatusBadRequest)
	w = a.do(httptest.NewRequest(http.MethodGet, "/img/users/2/other.png", nil))
	is.Equal(w.Code, http.StatusNotFound)
	w = a.do(httptest.NewRequest(http.MethodGet, "/img/users/1/missing.png", nil))
	is.Equal(w.Code, http.StatusNotFound)
}

func TestMethodOverrideUpdate(t *testing.T) {
	is := is.New(t)
	a := newApp(t, 0)
	a.loginDemo()
	ctx := context.TODO()

	u := &models.User{AccountID: a.demo().AccountID, FirstName: "Old", LastName: "Name", Email: "old@example.com"}
	is.NoErr(a.store.CreateUser(ctx, u))

	r := multipartRequest(t, "/users/"+itoa(u.ID), map[string]string{
		"_method": "PUT", "first_name": "New", "last_name": "Name", "email": "old@example.com",
	}, nil)
	r.Header.Set("Referer", "/users/"+itoa(u.ID)+"/edit")
	w := a.do(r)
	is.Equal(w.Code, http.StatusSeeOther)
	is.Equal(w.Header().Get("Location"), "/users/"+itoa(u.ID)+"/edit")

	got, err := a.store.GetUser(ctx, u.AccountID, u.ID)
	is.NoErr(err)
	is.Equal(got.FirstName, "New")
}

func TestAPIRateLimit(t *testing.T) {
	is := is.New(t)
	a := newApp(t, 3)
	for i := 0; i < 3; i++ {
		w := a.do(httptest.NewRequest(http.MethodGet, "/login", nil))
		is.Equal(w.Code, http.StatusOK)
	}
	w := a.do(httptest.NewRequest(http.MethodGet, "/login", nil))
	is.Equal(w.Code, http.StatusTooManyRequests)
	is.True(w.Header().Get("Retry-After") != "")
}

func TestHealth(t *testing.T) {
	is := is.New(t)
	a := newApp(t, 0)
	w := a.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	is.Equal(w.Code, http.StatusOK)
	is.Equal(w.Body.String(), "ok")
}

func TestFullPageLoadRendersShell(t *testing.T) {
	is := is.New(t)
	a := newApp(t, 0)
	w := a.do(httptest.NewRequest(http.MethodGet, "/login", nil))
	is.Equal(w.Code, http.StatusOK)
	is.True(strings.Contains(w.Body.String(), `<div id="app" data-page=`))
}

func TestLinks(t *testing.T) {
	is := is.New(t)
	r := httptest.NewRequest(http.MethodGet, "/contacts?search=a&page=2", nil)
	got := links(r, 2, 3)
	is.Equal(len(got), 5)
	is.Equal(*got[0].URL, "/contacts?page=1&search=a")
	is.Equal(got[0].Label, "&laquo; Previous")
	is.True(got[2].Active)
	is.Equal(*got[4].URL, "/contacts?page=3&search=a")

	last := links(r, 3, 3)
	is.True(last[len(last)-1].URL == nil)
	first := links(r, 1, 3)
	is.True(first[0].URL == nil)
}

func TestLinksWindow(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/contacts", nil)
	labels := func(ls []Link) string {
		out := make([]string, len(ls))
		for i, l := range ls {
			out[i] = l.Label
		}
		return strings.Join(out, " ")
	}

	cases := []struct {
		name          string
		current, last int
		want          string
	}{
		{"short", 2, 13, "1 2 3 4 5 6 7 8 9 10 11 12 13"},
		{"near start", 1, 50, "1 2 3 4 5 6 7 8 9 10 ... 49 50"},
		{"middle", 25, 50, "1 2 ... 22 23 24 25 26 27 28 ... 49 50"},
		{"near end", 48, 50, "1 2 ... 41 42 43 44 45 46 47 48 49 50"},
		{"past the end", 9000, 50, "1 2 ... 41 42 43 44 45 46 47 48 49 50"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			is := is.New(t)
			got := links(r, tc.current, tc.last)
			is.Equal(labels(got), "&laquo; Previous "+tc.want+" Next &raquo;")
			for _, l := range got {
				if l.Label == "..." {
					is.True(l.URL == nil)
					is.True(!l.Active)
				}
			}
		})
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
