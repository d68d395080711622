package service

import (
	"context"
	"net/http"

	"github.com/abotl/abotl-web/internal/api"
	"github.com/abotl/abotl-web/internal/model"
	"github.com/abotl/abotl-web/internal/session"
)

// Backend is the subset of the API client the services depend on.
// *api.Client implements it.
type Backend interface {
	Login(ctx context.Context, jar http.CookieJar, role session.Role, req model.LoginRequest) (*api.AuthResult, error)
	Register(ctx context.Context, jar http.CookieJar, role session.Role, req model.RegisterRequest) (*api.AuthResult, error)
	Logout(ctx context.Context, jar http.CookieJar, role session.Role) error

	FetchProfile(ctx context.Context, jar http.CookieJar, role session.Role) (*model.Profile, error)
	UpdateProfile(ctx context.Context, jar http.CookieJar, role session.Role, upd model.ProfileUpdate) (*model.Profile, error)
	DeleteAccount(ctx context.Context, jar http.CookieJar, role session.Role) error

	ListVideos(ctx context.Context, jar http.CookieJar) ([]model.Video, error)
	MyVideos(ctx context.Context, jar http.CookieJar) ([]model.Video, error)
	UploadVideo(ctx context.Context, jar http.CookieJar, up model.VideoUpload, progress func(int)) error
	DeleteVideo(ctx context.Context, jar http.CookieJar, id string) error
	ToggleLike(ctx context.Context, jar http.CookieJar, id string, action model.LikeAction) (int, error)
}

var _ Backend = (*api.Client)(nil)
