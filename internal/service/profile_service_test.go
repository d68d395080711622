package service

import (
	"context"
	"testing"

	"github.com/abotl/abotl-web/internal/model"
	"github.com/abotl/abotl-web/internal/session"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfileService(backend Backend) (*ProfileService, *session.MemoryStore) {
	store := session.NewMemoryStore()
	creds, _ := newCredentials()
	return NewProfileService(backend, store, creds, newMedia(), zerolog.Nop()), store
}

func TestProfileUpdate_RefreshesStoredUser(t *testing.T) {
	backend := &fakeBackend{updateProfile: func(role session.Role, upd model.ProfileUpdate) (*model.Profile, error) {
		assert.Equal(t, []string{"Art", "Physics"}, upd.Subjects)
		return &model.Profile{ID: "42", Username: upd.Username, Email: upd.Email, ProfileImage: "http://img/1"}, nil
	}}
	svc, store := newProfileService(backend)
	c := newGinCtx()
	require.NoError(t, store.Set(c, session.RoleTeacher, session.User{ID: "42", Username: "old"}))

	_, err := svc.Update(c, session.RoleTeacher, model.ProfileUpdate{
		Username: "new", Email: "n@x.io", Subjects: []string{"Art", "Physics", "Nonsense"},
	})
	require.NoError(t, err)

	u := store.Get(c).User
	assert.Equal(t, "new", u.Username)
	assert.Equal(t, "http://img/1", u.ImageURL)
}

func TestProfileUpdate_NoIDKeepsStoredUser(t *testing.T) {
	backend := &fakeBackend{updateProfile: func(session.Role, model.ProfileUpdate) (*model.Profile, error) {
		return &model.Profile{Username: "new"}, nil
	}}
	svc, store := newProfileService(backend)
	c := newGinCtx()
	require.NoError(t, store.Set(c, session.RoleStudent, session.User{ID: "7", Username: "old"}))

	_, err := svc.Update(c, session.RoleStudent, model.ProfileUpdate{Username: "new", Subjects: []string{"Art"}})
	require.NoError(t, err)
	assert.Equal(t, "old", store.Get(c).User.Username)
}

func TestProfileUpdate_StudentSendsNoSubjects(t *testing.T) {
	var got []string
	backend := &fakeBackend{updateProfile: func(_ session.Role, upd model.ProfileUpdate) (*model.Profile, error) {
		got = upd.Subjects
		return &model.Profile{}, nil
	}}
	svc, _ := newProfileService(backend)

	_, err := svc.Update(newGinCtx(), session.RoleStudent, model.ProfileUpdate{Subjects: []string{"Art"}})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestProfileUpdate_ImageTooLarge(t *testing.T) {
	backend := &fakeBackend{}
	svc, _ := newProfileService(backend)

	img := model.FileFromBytes("me.png", "image/png", pngBytes)
	img.Size = 2 << 20

	_, err := svc.Update(newGinCtx(), session.RoleStudent, model.ProfileUpdate{ProfileImage: img})
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.Empty(t, backend.Calls())
}

func TestProfileFetch(t *testing.T) {
	backend := &fakeBackend{fetchProfile: func(role session.Role) (*model.Profile, error) {
		return &model.Profile{Username: string(role)}, nil
	}}
	svc, _ := newProfileService(backend)

	p, err := svc.Fetch(context.Background(), "v1", session.RoleTeacher)
	require.NoError(t, err)
	assert.Equal(t, "teacher", p.Username)
}

func TestKnownSubjects(t *testing.T) {
	assert.Equal(t, []string{"Piano", "Art"}, KnownSubjects([]string{"Piano", "", "Art", "Piano", "Basket Weaving"}))
	assert.Empty(t, KnownSubjects(nil))
}
