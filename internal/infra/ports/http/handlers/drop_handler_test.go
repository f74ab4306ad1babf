package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepko/lepko/internal/infra/adapters/memory"
	"github.com/lepko/lepko/internal/usecase"
)

func newDropServer(t *testing.T) *httptest.Server {
	t.Helper()

	repo := memory.NewDropRepository(context.Background(), time.Hour)
	uc, err := usecase.NewDropUsecase(repo, t.TempDir(), time.Hour)
	require.NoError(t, err)

	h := NewDropHandler(uc)

	e := echo.New()
	e.HideBanner = true
	e.POST("/upload", h.Upload)
	e.GET("/file/:id", h.Download)

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	return srv
}

func uploadFile(t *testing.T, srv *httptest.Server, filename, content string) string {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/upload", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out["file_id"])

	return out["file_id"]
}

func TestUploadThenSingleDownload(t *testing.T) {
	srv := newDropServer(t)

	id := uploadFile(t, srv, "notes.txt", "drop contents")

	resp, err := http.Get(srv.URL + "/file/" + id)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "notes.txt")

	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "drop contents", string(got))

	// The link is spent: the second download answers 404.
	again, err := http.Get(srv.URL + "/file/" + id)
	require.NoError(t, err)
	defer again.Body.Close()
	assert.Equal(t, http.StatusNotFound, again.StatusCode)
}

func TestDownloadUnknownAndMalformedIDs(t *testing.T) {
	srv := newDropServer(t)

	for _, id := range []string{"ffffffff-ffff-ffff-ffff-ffffffffffff", "not-a-uuid"} {
		resp, err := http.Get(srv.URL + "/file/" + id)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	}
}

func TestUploadWithoutFileField(t *testing.T) {
	srv := newDropServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("name", "no file here"))
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/upload", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
