package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ucentricid/uproject-management/dao/model"
	"github.com/ucentricid/uproject-management/internal/util"
)

//nolint:gochecknoinits // Quiet gin during tests.
func init() {
	gin.SetMode(gin.TestMode)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Project{},
		&model.BoardColumn{},
		&model.Issue{},
		&model.Discussion{},
		&model.SystemSetting{},
	))
	return db
}

// fakeObjectStore records deletions and lets a test hook observe each
// one as it happens.
type fakeObjectStore struct {
	deleted  []string
	onDelete func(fileURL string)
}

func (s *fakeObjectStore) PresignUpload(_ context.Context, _, _ string) (string, string, error) {
	return "", "", nil
}

func (s *fakeObjectStore) PresignDownload(_ context.Context, _, _ string) (string, error) {
	return "", nil
}

func (s *fakeObjectStore) DeleteObject(_ context.Context, fileURL string) error {
	if s.onDelete != nil {
		s.onDelete(fileURL)
	}
	s.deleted = append(s.deleted, fileURL)
	return nil
}

func decodeBody(w *httptest.ResponseRecorder, out any) error {
	return json.Unmarshal(w.Body.Bytes(), out)
}

// newAuthedContext builds a gin context carrying the user's JWT claims
// and an :id route parameter.
func newAuthedContext(user *model.User, id uint) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: strconv.FormatUint(uint64(id), 10)}}
	util.SetJWTContext(c, util.JWTMessage{
		UserID:   user.ID,
		Username: user.Name,
		Role:     user.Role,
	})
	return c, w
}
