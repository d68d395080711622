package api

import (
	"context"
	"net/http"

	"github.com/abotl/abotl-web/internal/model"
	"github.com/abotl/abotl-web/internal/session"
)

// FetchProfile loads the signed-in profile. POST /api/auth/{role}/profile
func (c *Client) FetchProfile(ctx context.Context, jar http.CookieJar, role session.Role) (*model.Profile, error) {
	r, err := jsonRequest(http.MethodPost, authPath(role, "profile"), struct{}{})
	if err != nil {
		return nil, err
	}

	var p model.Profile
	if err := c.do(ctx, jar, r, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile saves profile edits. PUT /api/auth/{role}/profile (multipart)
func (c *Client) UpdateProfile(ctx context.Context, jar http.CookieJar, role session.Role, upd model.ProfileUpdate) (*model.Profile, error) {
	fields := []formField{
		{"username", upd.Username},
		{"email", upd.Email},
	}
	if role == session.RoleTeacher {
		subjects, err := encodeSubjects(upd.Subjects)
		if err != nil {
			return nil, err
		}
		fields = append(fields, formField{"subjects", subjects})
	}
	if upd.Password != "" {
		fields = append(fields, formField{"password", upd.Password})
	}

	body, contentType := multipartBody(fields, []fileField{{"profileImage", upd.ProfileImage}}, nil)
	r := request{
		method:      http.MethodPut,
		path:        authPath(role, "profile"),
		body:        body,
		contentType: contentType,
	}

	var p model.Profile
	if err := c.do(ctx, jar, r, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteAccount removes the account. DELETE /api/auth/{role}/profile
func (c *Client) DeleteAccount(ctx context.Context, jar http.CookieJar, role session.Role) error {
	return c.do(ctx, jar, request{method: http.MethodDelete, path: authPath(role, "profile")}, nil)
}
