package model

import (
	"encoding/json"
	"time"
)

// Visibility of an uploaded video.
type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityUnlisted Visibility = "unlisted"
	VisibilityPrivate  Visibility = "private"
)

// CategoryAll matches every category in the explore filter.
const CategoryAll = "All"

// VideoCategories is the fixed category list offered on upload and explore.
var VideoCategories = []string{
	"Mathematics", "Science", "English", "Physics", "Chemistry",
	"Biology", "Computer Science", "History", "Geography",
}

// VideoTeacher is the uploader summary embedded in a video.
type VideoTeacher struct {
	Username string `json:"username"`
}

// Video is a lesson video owned by the remote backend.
type Video struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Category     string        `json:"category"`
	ThumbnailURL string        `json:"thumbnailURL"`
	VideoURL     string        `json:"videoURL"`
	Likes        int           `json:"likes"`
	CreatedAt    time.Time     `json:"createdAt"`
	Teacher      *VideoTeacher `json:"teacher,omitempty"`
}

// UnmarshalJSON accepts the backend's "_id" as well as "id".
func (v *Video) UnmarshalJSON(data []byte) error {
	type alias Video
	var raw struct {
		alias
		MongoID   string `json:"_id"`
		CreatedAt string `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = Video(raw.alias)
	if raw.MongoID != "" {
		v.ID = raw.MongoID
	}
	// A missing or odd timestamp only hides the date label.
	if t, err := time.Parse(time.RFC3339Nano, raw.CreatedAt); err == nil {
		v.CreatedAt = t
	}
	return nil
}

// TeacherName returns the uploader's username or a placeholder.
func (v Video) TeacherName() string {
	if v.Teacher == nil || v.Teacher.Username == "" {
		return "Unknown Teacher"
	}
	return v.Teacher.Username
}

// LikeAction is the intent carried by a like toggle request.
type LikeAction string

const (
	ActionLike   LikeAction = "like"
	ActionUnlike LikeAction = "unlike"
)

// LikeRequest is the body of POST /api/teacher/videos/:id/like.
type LikeRequest struct {
	Action LikeAction `json:"action"`
}

// LikeResponse carries the backend's authoritative count.
type LikeResponse struct {
	Likes *int `json:"likes"`
}

// VideoUploadForm is the upload page's form. Files are bound separately.
type VideoUploadForm struct {
	Title       string     `form:"title"`
	Description string     `form:"description" binding:"max=5000"`
	Category    string     `form:"category"`
	Visibility  Visibility `form:"visibility" binding:"omitempty,oneof=public unlisted private"`
}

// VideoUpload is what the API client sends to the backend.
type VideoUpload struct {
	Title       string
	Description string
	Category    string
	Visibility  Visibility
	Thumbnail   *FilePart
	Video       *FilePart
}
