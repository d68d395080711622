package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/abotl/abotl-web/internal/model"
	"github.com/abotl/abotl-web/internal/session"
)

// AuthResult is a successful login or registration. User is nil when the
// backend did not return a canonical user object with an id.
type AuthResult struct {
	Message string
	User    *session.User
}

func authPath(role session.Role, op string) string {
	return fmt.Sprintf("/api/auth/%s/%s", role, op)
}

func toAuthResult(resp model.AuthResponse) *AuthResult {
	return &AuthResult{Message: resp.Message, User: resp.CanonicalUser()}
}

// Login signs the visitor in. POST /api/auth/{role}/login
func (c *Client) Login(ctx context.Context, jar http.CookieJar, role session.Role, req model.LoginRequest) (*AuthResult, error) {
	r, err := jsonRequest(http.MethodPost, authPath(role, "login"), req)
	if err != nil {
		return nil, err
	}

	var resp model.AuthResponse
	if err := c.do(ctx, jar, r, &resp); err != nil {
		return nil, err
	}
	return toAuthResult(resp), nil
}

// Register creates an account. POST /api/auth/{role}/register (multipart)
func (c *Client) Register(ctx context.Context, jar http.CookieJar, role session.Role, req model.RegisterRequest) (*AuthResult, error) {
	fields := []formField{
		{"username", req.Username},
		{"email", req.Email},
		{"password", req.Password},
	}
	if role == session.RoleTeacher {
		subjects, err := encodeSubjects(req.Subjects)
		if err != nil {
			return nil, err
		}
		fields = append(fields, formField{"subjects", subjects})
	}

	body, contentType := multipartBody(fields, []fileField{{"profilePicture", req.ProfilePicture}}, nil)
	r := request{
		method:      http.MethodPost,
		path:        authPath(role, "register"),
		body:        body,
		contentType: contentType,
	}

	var resp model.AuthResponse
	if err := c.do(ctx, jar, r, &resp); err != nil {
		return nil, err
	}
	return toAuthResult(resp), nil
}

// Logout ends the backend session. POST /api/auth/{role}/logout
func (c *Client) Logout(ctx context.Context, jar http.CookieJar, role session.Role) error {
	r, err := jsonRequest(http.MethodPost, authPath(role, "logout"), struct{}{})
	if err != nil {
		return err
	}
	return c.do(ctx, jar, r, nil)
}

func encodeSubjects(subjects []string) (string, error) {
	if subjects == nil {
		subjects = []string{}
	}
	b, err := json.Marshal(subjects)
	if err != nil {
		return "", fmt.Errorf("encode subjects: %w", err)
	}
	return string(b), nil
}
