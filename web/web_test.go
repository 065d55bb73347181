package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/upb/blog-platform/internal/policy"
	"github.com/upb/blog-platform/internal/validation"
	"github.com/upb/blog-platform/models"
)

func TestParsePages(t *testing.T) {
	pages, err := parsePages()
	require.NoError(t, err)
	for _, name := range pageNames {
		assert.NotNil(t, pages[name], name)
	}
}

func TestOldInput_DropsPasswords(t *testing.T) {
	old := oldInput(validation.Payload{
		"email":                 "ada@example.com",
		"password":              "secret123",
		"password_confirmation": "secret123",
		"age":                   42,
	})
	assert.Equal(t, map[string]string{"email": "ada@example.com"}, old)
}

func TestFlashRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	setFlash(rec, "Post created successfully.")
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	assert.Equal(t, "Post created successfully.", popFlash(rec, req))

	expired := rec.Result().Cookies()
	require.Len(t, expired, 1)
	assert.Equal(t, -1, expired[0].MaxAge)

	assert.Empty(t, popFlash(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestPageData_Permissions(t *testing.T) {
	ownerID := uuid.New()
	commenterID := uuid.New()
	post := &models.Post{ID: uuid.New(), AuthorID: ownerID}
	comment := &models.Comment{ID: uuid.New(), PostID: post.ID, AuthorID: &commenterID}
	guestComment := &models.Comment{ID: uuid.New(), PostID: post.ID}

	tests := []struct {
		name          string
		actor         *policy.Actor
		create        bool
		edit          bool
		deleteComment bool
		deleteGuest   bool
	}{
		{"guest", nil, false, false, false, false},
		{"owner", policy.NewActor(ownerID, false), true, true, true, true},
		{"commenter", policy.NewActor(commenterID, false), true, false, true, false},
		{"admin", policy.NewActor(uuid.New(), true), true, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &PageData{Actor: tt.actor, Post: post}
			assert.Equal(t, tt.create, d.CanCreatePost())
			assert.Equal(t, tt.edit, d.CanEditPost(post))
			assert.Equal(t, tt.edit, d.CanDeletePost(post))
			assert.Equal(t, tt.deleteComment, d.CanDeleteComment(comment))
			assert.Equal(t, tt.deleteGuest, d.CanDeleteComment(guestComment))
		})
	}

	assert.False(t, (&PageData{Actor: policy.NewActor(ownerID, true)}).CanDeleteComment(comment), "no post in view")
}

func TestNotFoundPage(t *testing.T) {
	h, err := NewHandler(nil, nil, nil, false, zap.NewNop())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "could not be found")
}

func TestFormErrorsRendered(t *testing.T) {
	h, err := NewHandler(nil, nil, nil, false, zap.NewNop())
	require.NoError(t, err)

	errs := validation.FieldErrors{}
	errs.Add("email", "The email field is required.")

	rec := httptest.NewRecorder()
	h.render(rec, httptest.NewRequest(http.MethodPost, "/register", nil), http.StatusUnprocessableEntity, pageRegister, &PageData{
		Errors: errs,
		Old:    map[string]string{"name": "Ada <3"},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "The email field is required.")
	assert.Contains(t, rec.Body.String(), `value="Ada &lt;3"`)
}
