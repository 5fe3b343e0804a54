package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/youssifElhelaly12/rayaBackend/internal/models"
	"github.com/youssifElhelaly12/rayaBackend/internal/tags"
	"github.com/youssifElhelaly12/rayaBackend/internal/users"
)

type fakeUserStore struct {
	created  []string
	existing map[string]bool
}

func (f *fakeUserStore) Create(_ context.Context, p users.CreateParams) (*models.User, error) {
	if f.existing[p.Email] {
		return nil, &pgconn.PgError{Code: "23505"}
	}
	f.created = append(f.created, p.Email)
	return &models.User{ID: int64(len(f.created)), Email: p.Email}, nil
}

type fakeTagStore struct {
	tag      *models.Tag
	attached []int64
}

func (f *fakeTagStore) GetByID(_ context.Context, id int64) (*models.Tag, error) {
	if f.tag == nil || f.tag.ID != id {
		return nil, tags.ErrNotFound
	}
	return f.tag, nil
}

func (f *fakeTagStore) AddUser(_ context.Context, _ int64, userID int64) error {
	f.attached = append(f.attached, userID)
	return nil
}

func doImport(t *testing.T, userStore *fakeUserStore, tagStore *fakeTagStore, csvBody, tagID string) (int, Summary) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "invitees.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(csvBody))
	require.NoError(t, err)
	if tagID != "" {
		require.NoError(t, mw.WriteField("tagId", tagID))
	}
	require.NoError(t, mw.Close())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/import", &buf)
	c.Request.Header.Set("Content-Type", mw.FormDataContentType())

	NewHandler(userStore, tagStore, zap.NewNop()).Import(c)

	var body struct {
		Data Summary `json:"data"`
	}
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec.Code, body.Data
}

const importFixture = "email,firstName,lastName,company\n" +
	"a@b.com,A,One,Acme\n" +
	"b@b.com,B,Two,Globex\n"

func TestImport(t *testing.T) {
	t.Run("creates users and attaches tag", func(t *testing.T) {
		userStore := &fakeUserStore{}
		tagStore := &fakeTagStore{tag: &models.Tag{ID: 7, TagName: "vip"}}

		code, summary := doImport(t, userStore, tagStore, importFixture, "7")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, 2, summary.TotalProcessed)
		assert.Equal(t, 2, summary.SuccessCount)
		assert.Equal(t, 0, summary.ErrorCount)
		assert.Equal(t, []string{"a@b.com", "b@b.com"}, userStore.created)
		assert.Len(t, tagStore.attached, 2)
	})

	t.Run("missing tag still imports with per-row errors", func(t *testing.T) {
		userStore := &fakeUserStore{}
		tagStore := &fakeTagStore{}

		code, summary := doImport(t, userStore, tagStore, importFixture, "9")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, []string{"a@b.com", "b@b.com"}, userStore.created)
		assert.Empty(t, tagStore.attached)
		assert.Equal(t, 0, summary.SuccessCount)
		assert.Equal(t, 2, summary.ErrorCount)
		require.Len(t, summary.Errors, 2)
		for _, e := range summary.Errors {
			assert.Contains(t, e.Message, "tag with id 9 not found")
		}
	})

	t.Run("existing email is a row error", func(t *testing.T) {
		userStore := &fakeUserStore{existing: map[string]bool{"a@b.com": true}}

		code, summary := doImport(t, userStore, &fakeTagStore{}, importFixture, "")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, 1, summary.SuccessCount)
		assert.Equal(t, 1, summary.ErrorCount)
		require.Len(t, summary.Errors, 1)
		assert.Equal(t, "a@b.com", summary.Errors[0].Email)
		assert.Contains(t, summary.Errors[0].Message, "email already exists")
	})

	t.Run("row without company is rejected", func(t *testing.T) {
		csvBody := "email,firstName,lastName,company\n" +
			"a@b.com,A,One,\n"

		userStore := &fakeUserStore{}
		code, summary := doImport(t, userStore, &fakeTagStore{}, csvBody, "")
		assert.Equal(t, http.StatusOK, code)
		assert.Empty(t, userStore.created)
		assert.Equal(t, 0, summary.SuccessCount)
		require.Len(t, summary.Errors, 1)
		assert.Contains(t, summary.Errors[0].Message, "company is required")
	})
}
