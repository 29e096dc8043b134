package main

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"contact-agenda/internal/config"
	"contact-agenda/internal/domains/contact"
	"contact-agenda/internal/domains/user"
	"contact-agenda/internal/infrastructure/storage"
	"contact-agenda/internal/shared/flash"
	"contact-agenda/internal/testutil"
	"contact-agenda/pkg/container"
	"contact-agenda/pkg/jwt"
	"contact-agenda/pkg/password"
	"contact-agenda/pkg/session"
)

const testPassword = "Tr4vessia!x"

type testApp struct {
	router   *gin.Engine
	c        *container.Container
	store    *testutil.Store
	pictures *testutil.PictureStore
}

// client keeps cookies between requests like a browser would.
type client struct {
	app     *testApp
	cookies map[string]string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Session: config.SessionConfig{
			Secret:      "test-secret",
			CookieName:  "sessionid",
			FlashCookie: "flashid",
			TTL:         time.Hour,
			FlashTTL:    time.Minute,
		},
		Upload: config.UploadConfig{MaxPictureBytes: 1 << 20, MaxPictureDimension: 64, MaxPicturePixels: 1 << 20},
	}

	store := testutil.NewStore()
	pictures := testutil.NewPictureStore()
	kv := testutil.NewMemoryCache()

	c := &container.Container{
		Config:       cfg,
		Images:       storage.NewImageProcessor(cfg.Upload.MaxPictureBytes, cfg.Upload.MaxPictureDimension, cfg.Upload.MaxPicturePixels),
		Pictures:     pictures,
		MediaURL:     "http://media.test/",
		Hasher:       password.NewHasher(bcrypt.MinCost),
		Sessions:     session.NewManager(jwt.NewManager(cfg.Session.Secret), kv, cfg.Session.TTL, cfg.Session.Secret),
		Flash:        flash.NewStore(kv, cfg.Session.FlashCookie, cfg.Session.FlashTTL, false),
		UserRepo:     store.Users(),
		CategoryRepo: store.Categories(),
		ContactRepo:  store.Contacts(),
	}
	c.Wire()

	router, err := SetupRouter(c)
	require.NoError(t, err)
	return &testApp{router: router, c: c, store: store, pictures: pictures}
}

func (a *testApp) client() *client {
	return &client{app: a, cookies: make(map[string]string)}
}

// addUser stores an active account directly, bypassing the registration form.
func (a *testApp) addUser(t *testing.T, username string, staff bool) *user.User {
	t.Helper()
	hash, err := a.c.Hasher.Hash(testPassword)
	require.NoError(t, err)
	u := &user.User{
		Username:     username,
		PasswordHash: hash,
		FirstName:    "First",
		LastName:     "Last",
		Email:        username + "@example.com",
		IsActive:     true,
		IsStaff:      staff,
	}
	require.NoError(t, a.store.Users().Create(context.Background(), u))
	return u
}

func (a *testApp) loggedIn(t *testing.T, username string, staff bool) (*client, *user.User) {
	t.Helper()
	u := a.addUser(t, username, staff)
	cl := a.client()
	rec := cl.post("/user/login/", url.Values{"username": {username}, "password": {testPassword}})
	require.Equal(t, http.StatusFound, rec.Code)
	return cl, u
}

func (cl *client) do(req *http.Request) *httptest.ResponseRecorder {
	for name, value := range cl.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	rec := httptest.NewRecorder()
	cl.app.router.ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 || ck.Value == "" {
			delete(cl.cookies, ck.Name)
			continue
		}
		cl.cookies[ck.Name] = ck.Value
	}
	return rec
}

func (cl *client) get(path string) *httptest.ResponseRecorder {
	return cl.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (cl *client) post(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return cl.do(req)
}

func (cl *client) postMultipart(t *testing.T, path string, values url.Values, picture []byte) *httptest.ResponseRecorder {
	t.Helper()
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	for k, vs := range values {
		for _, v := range vs {
			require.NoError(t, w.WriteField(k, v))
		}
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="picture"; filename="face.png"`)
	h.Set("Content-Type", "image/png")
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(picture)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return cl.do(req)
}

func (cl *client) doJSON(method, path string, payload any) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	return cl.do(req)
}

func contactValues(first, last string) url.Values {
	return url.Values{"first_name": {first}, "last_name": {last}, "phone": {"555-0100"}}
}

// ---- authentication ----

func TestAnonymousIsSentToLogin(t *testing.T) {
	app := newTestApp(t)
	cl := app.client()

	for _, path := range []string{"/", "/contact/create/", "/contact/1/", "/user/update/"} {
		rec := cl.get(path)
		assert.Equal(t, http.StatusFound, rec.Code, path)
		assert.Equal(t, "/user/login/?next="+url.QueryEscape(path), rec.Header().Get("Location"), path)
	}

	rec := cl.post("/contact/create/", contactValues("Ana", "Lima"))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, 0, app.store.ContactCount())
}

func TestRegisterThenLogin(t *testing.T) {
	app := newTestApp(t)
	cl := app.client()

	rec := cl.post("/user/create/", url.Values{
		"username":   {"ana"},
		"first_name": {"Ana"},
		"last_name":  {"Lima"},
		"email":      {"ana@example.com"},
		"password1":  {testPassword},
		"password2":  {testPassword},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/user/login/", rec.Header().Get("Location"))

	rec = cl.get("/user/login/")
	assert.Contains(t, rec.Body.String(), "User registered successfully!")

	rec = cl.post("/user/login/?next=/contact/create/", url.Values{"username": {"ana"}, "password": {testPassword}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/contact/create/", rec.Header().Get("Location"))

	rec = cl.get("/contact/create/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Logged in successfully!")
}

func TestRegister_MismatchRerenders(t *testing.T) {
	app := newTestApp(t)

	rec := app.client().post("/user/create/", url.Values{
		"username":   {"ana"},
		"first_name": {"Ana"},
		"last_name":  {"Lima"},
		"email":      {"ana@example.com"},
		"password1":  {testPassword},
		"password2":  {"something-else"},
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), user.MsgPasswordMismatch)
	assert.NotContains(t, rec.Body.String(), testPassword)
	assert.Equal(t, 0, app.store.UserCount())
}

func TestLogin_Invalid(t *testing.T) {
	app := newTestApp(t)
	app.addUser(t, "ana", false)
	cl := app.client()

	rec := cl.post("/user/login/", url.Values{"username": {"ana"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), user.MsgInvalidLogin)
	_, hasSession := cl.cookies["sessionid"]
	assert.False(t, hasSession)
}

func TestLogin_RejectsForeignNext(t *testing.T) {
	app := newTestApp(t)
	app.addUser(t, "ana", false)

	rec := app.client().post("/user/login/?next=//evil.example/", url.Values{"username": {"ana"}, "password": {testPassword}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestLogoutEndsSession(t *testing.T) {
	app := newTestApp(t)
	cl, _ := app.loggedIn(t, "ana", false)

	require.Equal(t, http.StatusOK, cl.get("/").Code)

	rec := cl.get("/user/logout/")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/user/login/", rec.Header().Get("Location"))

	assert.Equal(t, http.StatusFound, cl.get("/").Code)
}

func TestUserUpdate(t *testing.T) {
	app := newTestApp(t)
	cl, u := app.loggedIn(t, "ana", false)
	before, _ := app.store.User(u.ID)

	rec := cl.post("/user/update/", url.Values{
		"username":   {"ana"},
		"first_name": {"Anabela"},
		"last_name":  {"Lima"},
		"email":      {"ana@example.com"},
	})
	require.Equal(t, http.StatusFound, rec.Code)

	after, _ := app.store.User(u.ID)
	assert.Equal(t, "Anabela", after.FirstName)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)
}

func TestUserUpdate_PasswordChangeEndsOtherSessions(t *testing.T) {
	app := newTestApp(t)
	cl, u := app.loggedIn(t, "ana", false)

	other := app.client()
	rec := other.post("/user/login/", url.Values{"username": {"ana"}, "password": {testPassword}})
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, http.StatusOK, other.get("/").Code)

	rec = cl.post("/user/update/", url.Values{
		"username":   {"ana"},
		"first_name": {"Ana"},
		"last_name":  {"Lima"},
		"email":      {"ana@example.com"},
		"password1":  {"N0va-Senha!x"},
		"password2":  {"N0va-Senha!x"},
	})
	require.Equal(t, http.StatusFound, rec.Code)

	after, _ := app.store.User(u.ID)
	assert.NotEqual(t, u.PasswordHash, after.PasswordHash)

	assert.Equal(t, http.StatusOK, cl.get("/").Code)
	rec = other.get("/")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/user/login/")
}

// ---- contacts ----

func TestCreateContact(t *testing.T) {
	app := newTestApp(t)
	cl, u := app.loggedIn(t, "ana", false)

	rec := cl.post("/contact/create/", contactValues("Ana", "Lima"))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/contact/1/update/", rec.Header().Get("Location"))

	stored, ok := app.store.Contact(1)
	require.True(t, ok)
	assert.True(t, stored.OwnedBy(u.ID))
	assert.True(t, stored.Show)

	rec = cl.get("/contact/1/update/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Contact saved.")
	assert.Contains(t, rec.Body.String(), `value="Lima"`)
}

func TestCreateContact_SameNamesRerenders(t *testing.T) {
	app := newTestApp(t)
	cl, _ := app.loggedIn(t, "ana", false)

	rec := cl.post("/contact/create/", contactValues("Ana", "Ana"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, strings.Count(rec.Body.String(), contact.MsgSameNames))
	assert.Equal(t, 0, app.store.ContactCount())
}

func TestCreateContact_WithPicture(t *testing.T) {
	app := newTestApp(t)
	cl, _ := app.loggedIn(t, "ana", false)

	rec := cl.postMultipart(t, "/contact/create/", contactValues("Ana", "Lima"), testutil.PNG(16, 16))
	require.Equal(t, http.StatusFound, rec.Code)

	stored, ok := app.store.Contact(1)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(stored.Picture, "pictures/"))
	assert.True(t, app.pictures.Has(stored.Picture))

	rec = cl.get("/contact/1/")
	assert.Contains(t, rec.Body.String(), "http://media.test/"+stored.Picture)
}

func TestCreateContact_BrokenPicture(t *testing.T) {
	app := newTestApp(t)
	cl, _ := app.loggedIn(t, "ana", false)

	rec := cl.postMultipart(t, "/contact/create/", contactValues("Ana", "Lima"), []byte("plain text"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, app.store.ContactCount())
	assert.Equal(t, 0, app.pictures.Len())
}

func TestIndex_ListsOwnVisibleContacts(t *testing.T) {
	app := newTestApp(t)
	cl, u := app.loggedIn(t, "ana", false)
	other := uuid.New()

	app.store.PutContact(contact.Contact{FirstName: "Mine", Phone: "1", OwnerID: &u.ID, Show: true})
	app.store.PutContact(contact.Contact{FirstName: "Hidden", Phone: "2", OwnerID: &u.ID, Show: false})
	app.store.PutContact(contact.Contact{FirstName: "Theirs", Phone: "3", OwnerID: &other, Show: true})

	body := cl.get("/").Body.String()
	assert.Contains(t, body, "Mine")
	assert.NotContains(t, body, "Hidden")
	assert.NotContains(t, body, "Theirs")

	body = cl.get("/?q=nothing-matches").Body.String()
	assert.Contains(t, body, "No contacts found.")
}

func TestOtherOwnersContactIsNotFound(t *testing.T) {
	app := newTestApp(t)
	cl, _ := app.loggedIn(t, "ana", false)
	other := uuid.New()
	id := app.store.PutContact(contact.Contact{FirstName: "Theirs", Phone: "3", OwnerID: &other, Show: true})

	assert.Equal(t, http.StatusNotFound, cl.get("/contact/1/").Code)
	assert.Equal(t, http.StatusNotFound, cl.get("/contact/1/update/").Code)
	assert.Equal(t, http.StatusNotFound, cl.post("/contact/1/update/", contactValues("Mallory", "X")).Code)
	assert.Equal(t, http.StatusNotFound, cl.post("/contact/1/delete/", url.Values{"confirmation": {"yes"}}).Code)

	stored, ok := app.store.Contact(id)
	require.True(t, ok)
	assert.Equal(t, "Theirs", stored.FirstName)
}

func TestDeleteContact_NeedsConfirmation(t *testing.T) {
	app := newTestApp(t)
	cl, u := app.loggedIn(t, "ana", false)
	id := app.store.PutContact(contact.Contact{FirstName: "Ana", Phone: "1", OwnerID: &u.ID, Show: true})

	rec := cl.get("/contact/1/delete/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Are you sure you want to delete this contact?")

	rec = cl.get("/contact/1/")
	assert.NotContains(t, rec.Body.String(), "Are you sure you want to delete this contact?")

	for _, answer := range []string{"", "no", "maybe", "YES"} {
		rec = cl.post("/contact/1/delete/", url.Values{"confirmation": {answer}})
		assert.Equal(t, http.StatusOK, rec.Code, answer)
		assert.Contains(t, rec.Body.String(), "Are you sure you want to delete this contact?", answer)
		_, ok := app.store.Contact(id)
		assert.True(t, ok, answer)
	}

	rec = cl.post("/contact/1/delete/", nil)
	assert.Contains(t, rec.Body.String(), "Are you sure you want to delete this contact?")
	_, ok := app.store.Contact(id)
	assert.True(t, ok)

	rec = cl.post("/contact/1/delete/", url.Values{"confirmation": {"yes"}})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	_, ok = app.store.Contact(id)
	assert.False(t, ok)

	assert.Contains(t, cl.get("/").Body.String(), "Contact deleted.")
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	app := newTestApp(t)
	rec := app.client().get("/nowhere/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ---- admin API ----

func TestAdminAPI_RequiresStaff(t *testing.T) {
	app := newTestApp(t)

	rec := app.client().get("/admin/api/contacts")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	cl, _ := app.loggedIn(t, "ana", false)
	rec = cl.get("/admin/api/contacts")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminAPI_Categories(t *testing.T) {
	app := newTestApp(t)
	admin, _ := app.loggedIn(t, "root", true)

	rec := admin.doJSON(http.MethodPost, "/admin/api/categories", map[string]string{"name": "Friends"})
	require.Equal(t, http.StatusCreated, rec.Code)

	id := app.store.PutContact(contact.Contact{FirstName: "Ana", Phone: "1", Show: true, CategoryID: ptr(int64(1))})

	rec = admin.doJSON(http.MethodPost, "/admin/api/categories", map[string]string{"name": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = admin.doJSON(http.MethodDelete, "/admin/api/categories/1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	stored, ok := app.store.Contact(id)
	require.True(t, ok)
	assert.Nil(t, stored.CategoryID)
}

func TestAdminAPI_Contacts(t *testing.T) {
	app := newTestApp(t)
	admin, _ := app.loggedIn(t, "root", true)
	app.store.PutContact(contact.Contact{FirstName: "Ana", Phone: "1", Show: false})

	rec := admin.get("/admin/api/contacts?o=first_name")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Success bool              `json:"success"`
		Data    []contact.Contact `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Ana", body.Data[0].FirstName)

	rec = admin.doJSON(http.MethodPut, "/admin/api/contacts/1", map[string]string{"first_name": "Ana", "last_name": "Ana", "phone": "1"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = admin.get("/admin/api/contacts/export")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")

	rec = admin.doJSON(http.MethodDelete, "/admin/api/contacts/1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, http.StatusNotFound, admin.get("/admin/api/contacts/1").Code)
}

func ptr[T any](v T) *T { return &v }
