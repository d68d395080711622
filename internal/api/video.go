package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/abotl/abotl-web/internal/model"
)

const (
	videosPath   = "/api/teacher/videos"
	myVideosPath = "/api/teacher/my-videos"
	uploadPath   = "/api/teacher/upload-video"
)

func videoPath(id string) string {
	return videosPath + "/" + url.PathEscape(id)
}

// ListVideos returns every public video. GET /api/teacher/videos
func (c *Client) ListVideos(ctx context.Context, jar http.CookieJar) ([]model.Video, error) {
	var videos []model.Video
	if err := c.do(ctx, jar, request{method: http.MethodGet, path: videosPath}, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// MyVideos returns the signed-in teacher's videos. GET /api/teacher/my-videos
func (c *Client) MyVideos(ctx context.Context, jar http.CookieJar) ([]model.Video, error) {
	var videos []model.Video
	if err := c.do(ctx, jar, request{method: http.MethodGet, path: myVideosPath}, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// UploadVideo streams a new video. POST /api/teacher/upload-video (multipart)
// progress, when non-nil, receives a non-decreasing percentage of the file
// bytes sent.
func (c *Client) UploadVideo(ctx context.Context, jar http.CookieJar, up model.VideoUpload, progress func(int)) error {
	visibility := up.Visibility
	if visibility == "" {
		visibility = model.VisibilityPublic
	}

	fields := []formField{
		{"title", up.Title},
		{"description", up.Description},
		{"category", up.Category},
		{"visibility", string(visibility)},
	}
	files := []fileField{
		{"thumbnail", up.Thumbnail},
		{"video", up.Video},
	}

	body, contentType := multipartBody(fields, files, progress)
	return c.do(ctx, jar, request{
		method:      http.MethodPost,
		path:        uploadPath,
		body:        body,
		contentType: contentType,
		upload:      true,
	}, nil)
}

// DeleteVideo removes one of the teacher's videos. DELETE /api/teacher/videos/:id
func (c *Client) DeleteVideo(ctx context.Context, jar http.CookieJar, id string) error {
	return c.do(ctx, jar, request{method: http.MethodDelete, path: videoPath(id)}, nil)
}

// ToggleLike sends a like or unlike and returns the backend's count.
// POST /api/teacher/videos/:id/like
func (c *Client) ToggleLike(ctx context.Context, jar http.CookieJar, id string, action model.LikeAction) (int, error) {
	r, err := jsonRequest(http.MethodPost, videoPath(id)+"/like", model.LikeRequest{Action: action})
	if err != nil {
		return 0, err
	}

	var resp model.LikeResponse
	if err := c.do(ctx, jar, r, &resp); err != nil {
		return 0, err
	}
	if resp.Likes == nil {
		return 0, fmt.Errorf("%w: like response without a count", ErrMalformedResponse)
	}
	return *resp.Likes, nil
}
