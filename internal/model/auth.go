package model

import "github.com/abotl/abotl-web/internal/session"

// LoginRequest is both the login form and the JSON body sent to the backend.
type LoginRequest struct {
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required"`
}

// RegisterForm is the signup form. Subjects only apply to teachers.
type RegisterForm struct {
	Username string   `form:"username" binding:"required,min=2,max=50"`
	Email    string   `form:"email" binding:"required,email"`
	Password string   `form:"password" binding:"required,min=6,max=128"`
	Subjects []string `form:"subjects" binding:"dive,max=60"`
}

// RegisterRequest is what the API client sends on registration.
type RegisterRequest struct {
	Username       string
	Email          string
	Password       string
	Subjects       []string
	ProfilePicture *FilePart
}

// AuthResponse is the backend's reply to login and registration. Some
// deployments spell the user key "useData".
type AuthResponse struct {
	Message  string        `json:"message"`
	UserData *session.User `json:"userData"`
	UseData  *session.User `json:"useData"`
}

// CanonicalUser returns the user object carried by the response, if it has
// an id.
func (r AuthResponse) CanonicalUser() *session.User {
	for _, u := range []*session.User{r.UserData, r.UseData} {
		if u != nil && u.ID != "" {
			return u
		}
	}
	return nil
}
