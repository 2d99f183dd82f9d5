package client

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestResolveBaseURL(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	assert.Equal(t, defaultBaseURL, ResolveBaseURL())

	t.Setenv(EnvAPIURL, "https://cutout.example.com/api/")
	assert.Equal(t, "https://cutout.example.com/api", ResolveBaseURL())
}

func TestAPI_ProcessImage(t *testing.T) {
	result := []byte("final-png-bytes")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/process-image", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer func() {
			_ = file.Close()
		}()
		assert.Equal(t, "photo.png", header.Filename)
		// 客户端要自己探测并带上 MIME
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))

		assert.Equal(t, "#0000FF", r.FormValue("backgroundColor"))

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(result)
	}))
	defer server.Close()

	api := NewAPI(server.URL + "/api")
	got, err := api.ProcessImage(context.Background(), "photo.png", pngBytes(t, 4, 4), "#0000FF")
	require.NoError(t, err)
	assert.Equal(t, result, got)
}

func TestAPI_ProcessImage_NoColorOmitsField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, ok := r.MultipartForm.Value["backgroundColor"]
		assert.False(t, ok)
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	api := NewAPI(server.URL + "/api")
	_, err := api.ProcessImage(context.Background(), "a.png", pngBytes(t, 2, 2), "")
	require.NoError(t, err)
}

func TestAPI_RemoveBackground_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to process image"}`))
	}))
	defer server.Close()

	api := NewAPI(server.URL + "/api")
	_, err := api.RemoveBackground(context.Background(), "a.png", pngBytes(t, 2, 2))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to process image")
}

func TestAPI_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	api := NewAPI(server.URL + "/api")
	assert.NoError(t, api.Health(context.Background()))
}
