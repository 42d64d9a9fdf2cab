package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/kbindex/internal/domain"
)

func get(t *testing.T, h http.Handler, path string) (*http.Response, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	res := rec.Result()
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(b)
}

func TestServer_RebuildsOnEveryRequest(t *testing.T) {
	var calls atomic.Int32
	h := New(Options{
		Build: func(context.Context) ([]byte, domain.BuildReport, error) {
			n := calls.Add(1)
			rr := domain.BuildReport{PostsDir: "posts/", Items: []domain.ItemResult{{Filename: "a.html", Status: domain.StatusOK}}}
			rr.Finalize()
			return []byte("<html>" + string(rune('0'+n)) + "</html>"), rr, nil
		},
	})

	_, body := get(t, h, "/")
	require.Equal(t, "<html>1</html>", body)
	res, body := get(t, h, "/")
	require.Equal(t, "<html>2</html>", body)
	require.Equal(t, "text/html; charset=utf-8", res.Header.Get("Content-Type"))
	require.Equal(t, int32(2), calls.Load())

	res, body = get(t, h, "/report")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var rr domain.BuildReport
	require.NoError(t, json.Unmarshal([]byte(body), &rr))
	require.Equal(t, 1, rr.Summary.OK)
}

func TestServer_ReportBeforeBuild(t *testing.T) {
	h := New(Options{Build: func(context.Context) ([]byte, domain.BuildReport, error) {
		return nil, domain.BuildReport{}, nil
	}})
	res, _ := get(t, h, "/report")
	require.Equal(t, http.StatusNotFound, res.StatusCode)

	res, body := get(t, h, "/health")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.JSONEq(t, `{"status":"ok"}`, body)
}

func TestServer_BuildError(t *testing.T) {
	h := New(Options{Build: func(context.Context) ([]byte, domain.BuildReport, error) {
		return nil, domain.BuildReport{ErrorCode: domain.ErrCodeIOFailed}, errors.New("模板不存在")
	}})
	res, body := get(t, h, "/")
	require.Equal(t, http.StatusInternalServerError, res.StatusCode)
	require.Contains(t, body, "模板不存在")
}

func TestServer_ServesLocalPosts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.html"), []byte("<p>A</p>"), 0o644))

	h := New(Options{
		Build:       func(context.Context) ([]byte, domain.BuildReport, error) { return nil, domain.BuildReport{}, nil },
		PostsDir:    dir,
		PostsPrefix: "./posts/",
	})
	res, body := get(t, h, "/posts/a.html")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "<p>A</p>", body)

	res, _ = get(t, h, "/posts/missing.html")
	require.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestMountPrefix(t *testing.T) {
	cases := []struct {
		dir, prefix string
		want        string
		ok          bool
	}{
		{"/abs", "posts/", "/posts/", true},
		{"/abs", "./notes/posts", "/notes/posts/", true},
		{"/abs", "/srv/posts/", "", false},
		{"/abs", "../posts/", "", false},
		{"", "posts/", "", false},
		{"/abs", "./", "", false},
	}
	for _, c := range cases {
		got, ok := mountPrefix(c.dir, c.prefix)
		require.Equal(t, c.ok, ok, "prefix=%q", c.prefix)
		require.Equal(t, c.want, got, "prefix=%q", c.prefix)
	}
}
