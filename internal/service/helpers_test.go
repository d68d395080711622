package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/abotl/abotl-web/internal/api"
	"github.com/abotl/abotl-web/internal/config"
	"github.com/abotl/abotl-web/internal/model"
	"github.com/abotl/abotl-web/internal/repository"
	"github.com/abotl/abotl-web/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Smallest payloads the content sniffer recognises.
var (
	pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	mp4Bytes = []byte("\x00\x00\x00\x18ftypisom\x00\x00\x02\x00isomiso2\x00\x00\x00\x08free")
)

// fakeBackend implements Backend for unit tests. Only the funcs a test sets
// are called; the rest answer with zero values.
type fakeBackend struct {
	mu    sync.Mutex
	calls []string

	login         func(role session.Role, req model.LoginRequest) (*api.AuthResult, error)
	register      func(role session.Role, req model.RegisterRequest) (*api.AuthResult, error)
	logoutErr     error
	fetchProfile  func(role session.Role) (*model.Profile, error)
	updateProfile func(role session.Role, upd model.ProfileUpdate) (*model.Profile, error)
	deleteErr     error
	videos        []model.Video
	listErr       error
	upload        func(up model.VideoUpload, progress func(int)) error
	deleteVideo   func(id string) error
	toggleLike    func(id string, action model.LikeAction) (int, error)
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) Login(_ context.Context, _ http.CookieJar, role session.Role, req model.LoginRequest) (*api.AuthResult, error) {
	f.record("login")
	if f.login == nil {
		return &api.AuthResult{}, nil
	}
	return f.login(role, req)
}

func (f *fakeBackend) Register(_ context.Context, _ http.CookieJar, role session.Role, req model.RegisterRequest) (*api.AuthResult, error) {
	f.record("register")
	if f.register == nil {
		return &api.AuthResult{}, nil
	}
	return f.register(role, req)
}

func (f *fakeBackend) Logout(context.Context, http.CookieJar, session.Role) error {
	f.record("logout")
	return f.logoutErr
}

func (f *fakeBackend) FetchProfile(_ context.Context, _ http.CookieJar, role session.Role) (*model.Profile, error) {
	f.record("fetch_profile")
	if f.fetchProfile == nil {
		return &model.Profile{}, nil
	}
	return f.fetchProfile(role)
}

func (f *fakeBackend) UpdateProfile(_ context.Context, _ http.CookieJar, role session.Role, upd model.ProfileUpdate) (*model.Profile, error) {
	f.record("update_profile")
	if f.updateProfile == nil {
		return &model.Profile{}, nil
	}
	return f.updateProfile(role, upd)
}

func (f *fakeBackend) DeleteAccount(context.Context, http.CookieJar, session.Role) error {
	f.record("delete_account")
	return f.deleteErr
}

func (f *fakeBackend) ListVideos(context.Context, http.CookieJar) ([]model.Video, error) {
	f.record("list_videos")
	return f.videos, f.listErr
}

func (f *fakeBackend) MyVideos(context.Context, http.CookieJar) ([]model.Video, error) {
	f.record("my_videos")
	return f.videos, f.listErr
}

func (f *fakeBackend) UploadVideo(_ context.Context, _ http.CookieJar, up model.VideoUpload, progress func(int)) error {
	f.record("upload_video")
	if f.upload == nil {
		return nil
	}
	return f.upload(up, progress)
}

func (f *fakeBackend) DeleteVideo(_ context.Context, _ http.CookieJar, id string) error {
	f.record("delete_video")
	if f.deleteVideo == nil {
		return nil
	}
	return f.deleteVideo(id)
}

func (f *fakeBackend) ToggleLike(_ context.Context, _ http.CookieJar, id string, action model.LikeAction) (int, error) {
	f.record("toggle_like:" + string(action))
	if f.toggleLike == nil {
		return 0, nil
	}
	return f.toggleLike(id, action)
}

func newCredentials() (*CredentialService, *repository.MemoryCredentialRepository) {
	repo := repository.NewMemoryCredentialRepository()
	return NewCredentialService(repo, time.Hour, zerolog.Nop()), repo
}

func newMedia() *MediaService {
	return NewMediaService(&config.Config{MaxImageBytes: 1 << 20, MaxVideoBytes: 1 << 20})
}

func newGinCtx() *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	return c
}
