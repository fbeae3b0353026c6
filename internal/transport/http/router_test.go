package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/heimsharon/booksearch/internal/handlers"
	"github.com/heimsharon/booksearch/internal/models"
	"github.com/heimsharon/booksearch/internal/token"
)

func newTestServer(t *testing.T, codec *token.Codec) (*echo.Echo, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.SavedBook{}))

	e := echo.New()
	Register(e, &Deps{
		DB:            db,
		Codec:         codec,
		AuthHandler:   &handlers.AuthHandler{DB: db, Codec: codec},
		BookHandler:   &handlers.BookHandler{DB: db},
		SearchHandler: &handlers.SearchHandler{},
	})
	return e, db
}

func doRequest(e *echo.Echo, method, path string, body interface{}, header http.Header) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRegisterLoginMeFlow(t *testing.T) {
	codec := token.NewCodec([]byte("test_secret"))
	e, _ := newTestServer(t, codec)

	rec := doRequest(e, http.MethodPost, "/api/v1/register", map[string]string{
		"username": "alice", "email": "alice@x.com", "password": "password",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(e, http.MethodPost, "/api/v1/login", map[string]string{
		"email": "alice@x.com", "password": "password",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var creds struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &creds))
	require.NotEmpty(t, creds.Token)

	header := http.Header{}
	header.Set(echo.HeaderAuthorization, "Bearer "+creds.Token)
	rec = doRequest(e, http.MethodGet, "/api/v1/me", nil, header)
	require.Equal(t, http.StatusOK, rec.Code)

	var me models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	require.Equal(t, "alice", me.Username)
}

func TestMeWithoutCredentialIsUnauthorized(t *testing.T) {
	codec := token.NewCodec([]byte("test_secret"))
	e, _ := newTestServer(t, codec)

	rec := doRequest(e, http.MethodGet, "/api/v1/me", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

// An expired credential degrades to anonymous at the authenticator, so an
// operation that needs identity rejects it the same way as no credential.
func TestMeWithExpiredCredentialIsUnauthorized(t *testing.T) {
	issuedAt := time.Now().Add(-2 * time.Hour)
	issuer := token.NewCodec([]byte("test_secret")).WithClock(func() time.Time { return issuedAt })
	raw, err := issuer.Issue("1", "alice", "alice@x.com")
	require.NoError(t, err)

	codec := token.NewCodec([]byte("test_secret"))
	e, _ := newTestServer(t, codec)

	header := http.Header{}
	header.Set(echo.HeaderAuthorization, "Bearer "+raw)
	rec := doRequest(e, http.MethodGet, "/api/v1/me", nil, header)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSaveBookThroughRouter(t *testing.T) {
	codec := token.NewCodec([]byte("test_secret"))
	e, db := newTestServer(t, codec)

	rec := doRequest(e, http.MethodPost, "/api/v1/register", map[string]string{
		"username": "alice", "email": "alice@x.com", "password": "password",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var creds struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &creds))

	header := http.Header{}
	header.Set(echo.HeaderAuthorization, "Bearer "+creds.Token)
	rec = doRequest(e, http.MethodPost, "/api/v1/books", map[string]interface{}{
		"book_id": "b1",
		"title":   "The Go Programming Language",
		"authors": []string{"Alan A. A. Donovan"},
	}, header)
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, db.Model(&models.SavedBook{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	// anonymous write is rejected
	rec = doRequest(e, http.MethodPost, "/api/v1/books", map[string]interface{}{
		"book_id": "b2", "title": "X",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
