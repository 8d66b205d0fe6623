package services

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImgBBUploaderUpload(t *testing.T) {
	var gotKey, gotName string
	var gotImage []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotKey = r.PostForm.Get("key")
		gotName = r.PostForm.Get("name")
		gotImage, _ = base64.StdEncoding.DecodeString(r.PostForm.Get("image"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"status":200,"data":{"url":"https://i.ibb.co/abc/demo.png"}}`))
	}))
	defer srv.Close()

	u := NewImgBBUploader("secret", WithEndpoint(srv.URL), WithUploadClient(srv.Client()))
	url, err := u.Upload(context.Background(), []byte{0x89, 'P', 'N', 'G'}, "project_1_x")

	require.NoError(t, err)
	assert.Equal(t, "https://i.ibb.co/abc/demo.png", url)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "project_1_x", gotName)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, gotImage)
}

func TestImgBBUploaderFailures(t *testing.T) {
	cases := map[string]func(w http.ResponseWriter){
		"api error": func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"success":false,"status":400,"error":{"message":"Invalid API v1 key."}}`))
		},
		"no url": func(w http.ResponseWriter) {
			_, _ = w.Write([]byte(`{"success":true,"status":200,"data":{}}`))
		},
		"not json": func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`<html>bad gateway</html>`))
		},
	}

	for name, respond := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				respond(w)
			}))
			defer srv.Close()

			u := NewImgBBUploader("secret", WithEndpoint(srv.URL), WithUploadClient(srv.Client()))
			_, err := u.Upload(context.Background(), []byte("img"), "x")
			assert.ErrorIs(t, err, ErrUpload)
		})
	}
}

func TestImgBBUploaderDisabledWithoutKey(t *testing.T) {
	u := NewImgBBUploader("")
	assert.False(t, u.Enabled())

	_, err := u.Upload(context.Background(), []byte("img"), "x")
	assert.ErrorIs(t, err, ErrUploaderDisabled)
}

func TestImgBBUploaderRejectsEmptyImage(t *testing.T) {
	_, err := NewImgBBUploader("secret").Upload(context.Background(), nil, "x")
	assert.ErrorIs(t, err, ErrUpload)
}
