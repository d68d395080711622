package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abotl/abotl-web/internal/api"
	"github.com/abotl/abotl-web/internal/config"
	"github.com/abotl/abotl-web/internal/handler"
	"github.com/abotl/abotl-web/internal/repository"
	"github.com/abotl/abotl-web/internal/router"
	"github.com/abotl/abotl-web/internal/service"
	"github.com/abotl/abotl-web/internal/session"
	"github.com/abotl/abotl-web/internal/validator"
	"github.com/abotl/abotl-web/internal/web"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

var (
	pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	mp4Bytes = []byte("\x00\x00\x00\x18ftypisom\x00\x00\x02\x00isomiso2\x00\x00\x00\x08free")
)

// fakeAPI is the remote backend. Unregistered routes answer 404.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string
	mux   *http.ServeMux
	srv   *httptest.Server
}

func newFakeAPI(t *testing.T) *fakeAPI {
	f := &fakeAPI{mux: http.NewServeMux()}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls = append(f.calls, r.Method+" "+r.URL.Path)
		f.mu.Unlock()
		f.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) Handle(pattern string, h http.HandlerFunc) {
	f.mux.HandleFunc(pattern, h)
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type app struct {
	engine *gin.Engine
	store  *session.MemoryStore
	api    *fakeAPI
	hub    *service.ProgressHub
}

func newApp(t *testing.T) *app {
	t.Helper()

	fa := newFakeAPI(t)
	store := session.NewMemoryStore()
	cfg := &config.Config{
		GinMode:       gin.TestMode,
		AuthRateLimit: 1000,
		MaxVideoBytes: 1 << 20,
		MaxImageBytes: 1 << 20,
		CredentialTTL: time.Hour,
	}
	log := zerolog.Nop()

	client := api.NewClient(api.Options{BaseURL: fa.srv.URL, Timeout: 5 * time.Second}, log)
	creds := service.NewCredentialService(repository.NewMemoryCredentialRepository(), time.Hour, log)
	media := service.NewMediaService(cfg)
	likeService := service.NewLikeService(client, creds, time.Hour, log)
	authService := service.NewAuthService(client, store, creds, media, likeService, log)
	profileService := service.NewProfileService(client, store, creds, media, log)
	videoService := service.NewVideoService(client, creds, log)
	hub := service.NewProgressHub()
	uploadService := service.NewUploadService(client, creds, media, hub, log)

	views, err := handler.NewRenderer(web.Templates())
	require.NoError(t, err)

	handlers := &router.Handlers{
		Page:    handler.NewPageHandler(store, views),
		Auth:    handler.NewAuthHandler(authService, store, views, log),
		Profile: handler.NewProfileHandler(profileService, videoService, authService, store, views, log),
		Explore: handler.NewExploreHandler(videoService, likeService, store, views, log),
		Upload:  handler.NewUploadHandler(uploadService, store, views, cfg.MaxVideoBytes, log),
		WS:      handler.NewWSHandler(hub, store, log, nil),
		System:  handler.NewSystemHandler(nil, log),
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return &app{
		engine: router.SetupRouter(ctx, store, handlers, cfg, log),
		store:  store,
		api:    fa,
		hub:    hub,
	}
}

func (a *app) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *app) signIn(t *testing.T, role session.Role, user session.User) {
	t.Helper()
	require.NoError(t, a.store.Set(nil, role, user))
}

func (a *app) flashes() []session.Flash {
	return a.store.Flashes(nil)
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

type filePart struct {
	field, name string
	data        []byte
}

func postMultipart(t *testing.T, path string, values url.Values, files ...filePart) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, vs := range values {
		for _, v := range vs {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// ─── Auth ────────────────────────────────────────────────────────────

func TestLogin_StoresSessionAndRelaysCookie(t *testing.T) {
	a := newApp(t)
	a.api.Handle("POST /api/auth/student/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "token", Value: "t-7", Path: "/"})
		writeJSON(w, http.StatusOK, map[string]any{
			"message":  "Welcome back",
			"userData": map[string]any{"_id": "u7", "username": "ann", "email": "ann@school.io"},
		})
	})
	a.api.Handle("POST /api/auth/student/profile", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("token")
		if err != nil || cookie.Value != "t-7" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Not signed in"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"_id": "u7", "username": "ann-from-api", "email": "ann@school.io"})
	})

	w := a.serve(postForm("/student/login", url.Values{"email": {"ann@school.io"}, "password": {"secret1"}}))
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/student/page/u7", w.Header().Get("Location"))

	s := a.store.Get(nil)
	assert.Equal(t, session.RoleStudent, s.Role)
	assert.Equal(t, "u7", s.UserID())
	assert.Equal(t, []session.Flash{{Kind: session.FlashSuccess, Message: "Welcome back"}}, a.flashes())

	// The backend cookie is sent on the next call on the visitor's behalf.
	w = a.serve(httptest.NewRequest(http.MethodGet, "/profile", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ann-from-api")
}

func TestLogin_ValidationNeverReachesBackend(t *testing.T) {
	a := newApp(t)

	w := a.serve(postForm("/teacher/login", url.Values{"email": {"not-an-email"}}))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "email must be a valid email address")
	assert.Contains(t, w.Body.String(), "password is a required field")
	assert.Contains(t, w.Body.String(), `value="not-an-email"`)

	assert.Empty(t, a.api.Calls())
	assert.False(t, a.store.Get(nil).IsAuthenticated())
}

func TestLogin_NoUserLeavesSessionUntouched(t *testing.T) {
	a := newApp(t)
	a.api.Handle("POST /api/auth/student/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"message": "Please verify your email"})
	})

	w := a.serve(postForm("/student/login", url.Values{"email": {"a@b.co"}, "password": {"secret1"}}))
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.False(t, a.store.Get(nil).IsAuthenticated())
	assert.Equal(t, []session.Flash{{Kind: session.FlashInfo, Message: "Please verify your email"}}, a.flashes())
}

func TestLogin_BackendRejection(t *testing.T) {
	a := newApp(t)
	a.api.Handle("POST /api/auth/teacher/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Invalid credentials"})
	})

	w := a.serve(postForm("/teacher/login", url.Values{"email": {"t@b.co"}, "password": {"wrong-pw"}}))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")
	assert.NotContains(t, w.Body.String(), "wrong-pw")
	assert.False(t, a.store.Get(nil).IsAuthenticated())
}

func TestRegister_TeacherSubjectsAndPicture(t *testing.T) {
	a := newApp(t)
	a.api.Handle("POST /api/auth/teacher/register", func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "tess", r.FormValue("username"))
		assert.JSONEq(t, `["Physics","Calculus"]`, r.FormValue("subjects"))

		f, fh, err := r.FormFile("profilePicture")
		if assert.NoError(t, err) {
			defer f.Close()
			assert.Equal(t, "image/png", fh.Header.Get("Content-Type"))
		}
		writeJSON(w, http.StatusCreated, map[string]any{"useData": map[string]any{"id": "t1", "username": "tess"}})
	})

	w := a.serve(postMultipart(t, "/teacher/register", url.Values{
		"username": {"tess"},
		"email":    {"tess@school.io"},
		"password": {"secret12"},
		"subjects": {"Physics", "Underwater Basket Weaving", "Calculus", "Physics"},
	}, filePart{"profilePicture", "me.png", pngBytes}))

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/teacher/page/t1", w.Header().Get("Location"))
	assert.Equal(t, []session.Flash{{Kind: session.FlashSuccess, Message: "Account created"}}, a.flashes())
}

func TestRegister_RejectsNonImagePicture(t *testing.T) {
	a := newApp(t)

	w := a.serve(postMultipart(t, "/student/register", url.Values{
		"username": {"sam"},
		"email":    {"sam@school.io"},
		"password": {"secret12"},
	}, filePart{"profilePicture", "me.png", []byte("plain text, not a picture")}))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Please select a valid image file")
	assert.Empty(t, a.api.Calls())
}

func TestLogout(t *testing.T) {
	t.Run("needs confirmation", func(t *testing.T) {
		a := newApp(t)
		a.signIn(t, session.RoleStudent, session.User{ID: "u7"})

		w := a.serve(postForm("/student/page/u7/logout", url.Values{}))
		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/student/page/u7", w.Header().Get("Location"))
		assert.True(t, a.store.Get(nil).IsAuthenticated())
		assert.Empty(t, a.api.Calls())
	})

	t.Run("clears even when the backend fails", func(t *testing.T) {
		a := newApp(t)
		a.signIn(t, session.RoleStudent, session.User{ID: "u7"})
		a.api.Handle("POST /api/auth/student/logout", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "boom"})
		})

		w := a.serve(postForm("/student/page/u7/logout", url.Values{"confirm": {"true"}}))
		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
		assert.False(t, a.store.Get(nil).IsAuthenticated())
		assert.Equal(t, []string{"POST /api/auth/student/logout"}, a.api.Calls())
		assert.Equal(t, []session.Flash{{Kind: session.FlashSuccess, Message: "Logged out successfully!"}}, a.flashes())
	})
}

// ─── Pages ───────────────────────────────────────────────────────────

func TestDashboard(t *testing.T) {
	a := newApp(t)
	a.signIn(t, session.RoleTeacher, session.User{ID: "42", Email: "tess@school.io"})

	w := a.serve(httptest.NewRequest(http.MethodGet, "/teacher/page/42", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Welcome, tess@school.io")
	assert.Contains(t, body, `action="/teacher/page/42/logout"`)
	assert.Contains(t, body, `href="/video"`)
	assert.Equal(t, "private, no-store", w.Header().Get("Cache-Control"))

	// Wrong role for the dashboard goes home.
	w = a.serve(httptest.NewRequest(http.MethodGet, "/student/page/42", nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestHome_RedirectsSignedInVisitor(t *testing.T) {
	a := newApp(t)

	w := a.serve(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `href="/teacher/register"`)

	a.signIn(t, session.RoleStudent, session.User{ID: "7"})
	w = a.serve(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/student/page/7", w.Header().Get("Location"))
}

func TestChat_RefreshesHome(t *testing.T) {
	a := newApp(t)
	a.signIn(t, session.RoleStudent, session.User{ID: "7"})

	w := a.serve(httptest.NewRequest(http.MethodGet, "/chat", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http-equiv="refresh"`)
	assert.Contains(t, w.Body.String(), "coming soon")
}

// ─── Profile ─────────────────────────────────────────────────────────

func TestProfile_UpdateRefreshesSession(t *testing.T) {
	a := newApp(t)
	a.signIn(t, session.RoleTeacher, session.User{ID: "42", Username: "tess"})
	a.api.Handle("PUT /api/auth/teacher/profile", func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "tessa", r.FormValue("username"))
		_, hasPassword := r.MultipartForm.Value["password"]
		assert.False(t, hasPassword, "blank password must not be sent")
		writeJSON(w, http.StatusOK, map[string]any{"_id": "42", "username": "tessa", "email": "tessa@school.io"})
	})

	w := a.serve(postForm("/profile", url.Values{
		"username": {"tessa"},
		"email":    {"tessa@school.io"},
		"subjects": {"Physics"},
	}))
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/profile", w.Header().Get("Location"))
	assert.Equal(t, "tessa", a.store.Get(nil).User.Username)
	assert.Equal(t, []session.Flash{{Kind: session.FlashSuccess, Message: "Profile updated successfully!"}}, a.flashes())
}

func TestProfile_ShowKeepsPageOnFetchError(t *testing.T) {
	a := newApp(t)
	a.signIn(t, session.RoleTeacher, session.User{ID: "42", Username: "tess"})
	a.api.Handle("POST /api/auth/teacher/profile", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Database down"})
	})
	a.api.Handle("GET /api/teacher/my-videos", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{{"_id": "v1", "title": "Fractions"}})
	})

	w := a.serve(httptest.NewRequest(http.MethodGet, "/profile", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Error loading profile: Database down")
	assert.Contains(t, body, `value="tess"`)
	assert.Contains(t, body, "/profile/videos/v1/delete")
}

func TestProfile_DeleteAccount(t *testing.T) {
	t.Run("wrong phrase", func(t *testing.T) {
		a := newApp(t)
		a.signIn(t, session.RoleStudent, session.User{ID: "7"})

		w := a.serve(postForm("/profile/delete", url.Values{"confirmation": {"delete"}, "confirm": {"true"}}))
		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/profile", w.Header().Get("Location"))
		assert.True(t, a.store.Get(nil).IsAuthenticated())
		assert.Empty(t, a.api.Calls())
		assert.Equal(t, []session.Flash{{Kind: session.FlashInfo, Message: "Account deletion cancelled"}}, a.flashes())
	})

	t.Run("backend refuses", func(t *testing.T) {
		a := newApp(t)
		a.signIn(t, session.RoleStudent, session.User{ID: "7"})
		a.api.Handle("DELETE /api/auth/student/profile", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusForbidden, map[string]any{"error": "Not allowed"})
		})

		w := a.serve(postForm("/profile/delete", url.Values{"confirmation": {"DELETE"}, "confirm": {"true"}}))
		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.True(t, a.store.Get(nil).IsAuthenticated())
		assert.Equal(t, []session.Flash{{Kind: session.FlashError, Message: "Error deleting account: Not allowed"}}, a.flashes())
	})

	t.Run("confirmed", func(t *testing.T) {
		a := newApp(t)
		a.signIn(t, session.RoleStudent, session.User{ID: "7"})
		a.api.Handle("DELETE /api/auth/student/profile", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})

		w := a.serve(postForm("/profile/delete", url.Values{"confirmation": {"DELETE"}, "confirm": {"true"}}))
		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
		assert.False(t, a.store.Get(nil).IsAuthenticated())
	})
}

func TestProfile_DeleteVideoNeedsConfirmation(t *testing.T) {
	a := newApp(t)
	a.signIn(t, session.RoleTeacher, session.User{ID: "42"})
	a.api.Handle("DELETE /api/teacher/videos/v1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	a.serve(postForm("/profile/videos/v1/delete", url.Values{}))
	assert.Empty(t, a.api.Calls())
	assert.Equal(t, []session.Flash{{Kind: session.FlashInfo, Message: "Video deletion cancelled"}}, a.flashes())

	a.serve(postForm("/profile/videos/v1/delete", url.Values{"confirm": {"true"}}))
	assert.Equal(t, []string{"DELETE /api/teacher/videos/v1"}, a.api.Calls())
	assert.Equal(t, []session.Flash{{Kind: session.FlashSuccess, Message: "Video deleted successfully"}}, a.flashes())
}

// ─── Explore ─────────────────────────────────────────────────────────

func TestExplore_Filters(t *testing.T) {
	a := newApp(t)
	a.signIn(t, session.RoleStudent, session.User{ID: "7"})
	a.api.Handle("GET /api/teacher/videos", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"_id": "v1", "title": "Fractions made easy", "category": "Mathematics"},
			{"_id": "v2", "title": "Cells", "description": "Intro to biology", "category": "Biology"},
		})
	})

	w := a.serve(httptest.NewRequest(http.MethodGet, "/explore?q=FRACTION", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Fractions made easy")
	assert.NotContains(t, w.Body.String(), "Intro to biology")

	w = a.serve(httptest.NewRequest(http.MethodGet, "/explore?category=Biology", nil))
	assert.Contains(t, w.Body.String(), "Intro to biology")
	assert.NotContains(t, w.Body.String(), "Fractions made easy")
}

func TestExplore_LikeJSON(t *testing.T) {
	a := newApp(t)
	a.signIn(t, session.RoleStudent, session.User{ID: "7"})

	var actions []string
	a.api.Handle("POST /api/teacher/videos/v1/like", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Action string `json:"action"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		actions = append(actions, body.Action)
		likes := 6
		if body.Action == "unlike" {
			likes = 5
		}
		writeJSON(w, http.StatusOK, map[string]any{"likes": likes})
	})

	like := func() map[string]any {
		req := postForm("/explore/videos/v1/like", url.Values{})
		req.Header.Set("Accept", "application/json")
		w := a.serve(req)
		require.Equal(t, http.StatusOK, w.Code)

		var env struct {
			Data map[string]any `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		return env.Data
	}

	first := like()
	assert.Equal(t, true, first["liked"])
	assert.EqualValues(t, 6, first["likes"])

	second := like()
	assert.Equal(t, false, second["liked"])
	assert.EqualValues(t, 5, second["likes"])

	assert.Equal(t, []string{"like", "unlike"}, actions)
}

func TestExplore_LikeFailure(t *testing.T) {
	a := newApp(t)
	a.signIn(t, session.RoleStudent, session.User{ID: "7"})
	a.api.Handle("POST /api/teacher/videos/v1/like", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "nope"})
	})

	w := a.serve(postForm("/explore/videos/v1/like", url.Values{"q": {"frac"}}))
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/explore?q=frac", w.Header().Get("Location"))
	assert.Equal(t, []session.Flash{{Kind: session.FlashError, Message: "Failed to toggle like"}}, a.flashes())

	req := postForm("/explore/videos/v1/like", url.Values{})
	req.Header.Set("Accept", "application/json")
	w = a.serve(req)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "BACKEND_ERROR")
}

// ─── Upload ──────────────────────────────────────────────────────────

func TestUpload_ValidationNeverReachesBackend(t *testing.T) {
	a := newApp(t)
	a.signIn(t, session.RoleTeacher, session.User{ID: "42"})

	tests := []struct {
		name   string
		values url.Values
		files  []filePart
		want   string
	}{
		{"blank title", url.Values{"title": {"   "}}, []filePart{{"video", "a.mp4", mp4Bytes}, {"thumbnail", "a.png", pngBytes}}, "Title is required"},
		{"no video", url.Values{"title": {"Cells"}}, []filePart{{"thumbnail", "a.png", pngBytes}}, "Please select a video file"},
		{"no thumbnail", url.Values{"title": {"Cells"}}, []filePart{{"video", "a.mp4", mp4Bytes}}, "Please select a thumbnail image"},
		{"text thumbnail", url.Values{"title": {"Cells"}}, []filePart{{"video", "a.mp4", mp4Bytes}, {"thumbnail", "a.png", []byte("hello")}}, "Please select a valid image file for thumbnail"},
		{"bad visibility", url.Values{"title": {"Cells"}, "visibility": {"everyone"}}, nil, "visibility must be one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.serve(postMultipart(t, "/video", tt.values, tt.files...))
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}
	assert.Empty(t, a.api.Calls())
}

func TestUpload_Success(t *testing.T) {
	a := newApp(t)
	a.signIn(t, session.RoleTeacher, session.User{ID: "42"})
	a.api.Handle("POST /api/teacher/upload-video", func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "Cells", r.FormValue("title"))
		assert.Equal(t, "public", r.FormValue("visibility"))

		f, _, err := r.FormFile("video")
		if assert.NoError(t, err) {
			got, _ := io.ReadAll(f)
			assert.Equal(t, mp4Bytes, got)
		}
		writeJSON(w, http.StatusCreated, map[string]any{"message": "ok"})
	})

	w := a.serve(postMultipart(t, "/video", url.Values{"title": {" Cells "}, "category": {"Biology"}},
		filePart{"video", "cells.mp4", mp4Bytes},
		filePart{"thumbnail", "cells.png", pngBytes},
	))
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/teacher/page/42", w.Header().Get("Location"))

	st := a.hub.Status(a.store.ID(nil))
	assert.Equal(t, service.UploadSuccess, st.State)
	assert.Equal(t, 100, st.Progress)
}

func TestUpload_BackendFailureResetsFlow(t *testing.T) {
	a := newApp(t)
	a.signIn(t, session.RoleTeacher, session.User{ID: "42"})
	a.api.Handle("POST /api/teacher/upload-video", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]any{"error": "Too big"})
	})

	w := a.serve(postMultipart(t, "/video", url.Values{"title": {"Cells"}},
		filePart{"video", "cells.mp4", mp4Bytes},
		filePart{"thumbnail", "cells.png", pngBytes},
	))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Upload failed: Too big")

	st := a.hub.Status(a.store.ID(nil))
	assert.Equal(t, service.UploadSelectingFiles, st.State)
	assert.Zero(t, st.Progress)
}
