package helpers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"testing"
	"time"

	"gocast_backend/database"
	"gocast_backend/internal/app"
	"gocast_backend/internal/auth"
	"gocast_backend/internal/config"
	"gocast_backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const TestJWTSecret = "test_secret_key_for_integration_12345"

type TestServer struct {
	Server *httptest.Server
	DB     *gorm.DB
	Store  *storage.FilesystemStore
	Tokens *auth.TokenManager
}

// NewTestServer starts the full router on a fresh SQLite database and a
// filesystem store, both under t.TempDir().
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()

	db, err := database.Open("sqlite", filepath.Join(dir, "test.db"), "test")
	require.NoError(t, err, "failed to open the test database")
	require.NoError(t, database.AutoMigrate(db))

	store, err := storage.NewFilesystemStore(filepath.Join(dir, "uploads"), storage.DefaultMaxSize)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Upload.InlineMaxSize = storage.DefaultInlineMaxSize
	cfg.Upload.MaxSize = storage.DefaultMaxSize
	cfg.CORS.AllowedOrigins = []string{"http://localhost:5173"}

	tokens := auth.NewTokenManager(TestJWTSecret, "gocast-test", time.Hour)
	router := app.SetupRouter(app.Dependencies{
		Config: cfg,
		DB:     db,
		Blobs:  storage.NewRegistry(store, storage.NewInlineStore(0)),
		Tokens: tokens,
	})

	ts := &TestServer{
		Server: httptest.NewServer(router),
		DB:     db,
		Store:  store,
		Tokens: tokens,
	}
	t.Cleanup(ts.Close)
	return ts
}

func (ts *TestServer) Close() {
	ts.Server.Close()
	if sqlDB, err := ts.DB.DB(); err == nil {
		sqlDB.Close()
	}
}

// SendRequest sends body as JSON and returns the response with its body read.
func (ts *TestServer) SendRequest(t *testing.T, method, path, token string, body interface{}) (*http.Response, string) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reqBody)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return ts.Do(t, req, token)
}

// FilePart is one file of a multipart upload.
type FilePart struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

func (ts *TestServer) SendMultipart(t *testing.T, path, token string, file FilePart, fields map[string]string) (*http.Response, string) {
	t.Helper()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+file.Field+`"; filename="`+file.Filename+`"`)
	if file.ContentType != "" {
		header.Set("Content-Type", file.ContentType)
	}
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(file.Data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return ts.Do(t, req, token)
}

func (ts *TestServer) Do(t *testing.T, req *http.Request, token string) (*http.Response, string) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := ts.Server.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(resBody)
}
