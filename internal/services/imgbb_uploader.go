package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	DefaultImgBBEndpoint = "https://api.imgbb.com/1/upload"
	maxResponseBytes     = 1 << 20
)

// ImgBBUploader turns image bytes into a public URL on imgbb.
type ImgBBUploader struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

type UploaderOption func(*ImgBBUploader)

func WithEndpoint(endpoint string) UploaderOption {
	return func(u *ImgBBUploader) { u.endpoint = endpoint }
}

func WithUploadClient(client *http.Client) UploaderOption {
	return func(u *ImgBBUploader) { u.client = client }
}

func NewImgBBUploader(apiKey string, opts ...UploaderOption) *ImgBBUploader {
	u := &ImgBBUploader{
		apiKey:   apiKey,
		endpoint: DefaultImgBBEndpoint,
		client:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *ImgBBUploader) Enabled() bool {
	return u != nil && u.apiKey != ""
}

type imgbbResponse struct {
	Success bool `json:"success"`
	Status  int  `json:"status"`
	Data    struct {
		URL string `json:"url"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload posts the image and returns its URL. Every failure is reported as
// ErrUpload (or ErrUploaderDisabled without an API key).
func (u *ImgBBUploader) Upload(ctx context.Context, image []byte, name string) (string, error) {
	if !u.Enabled() {
		return "", ErrUploaderDisabled
	}
	if len(image) == 0 {
		return "", errors.Wrap(ErrUpload, "empty image")
	}

	form := url.Values{}
	form.Set("key", u.apiKey)
	form.Set("image", base64.StdEncoding.EncodeToString(image))
	if name != "" {
		form.Set("name", name)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.Wrapf(ErrUpload, "build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := u.client.Do(req)
	if err != nil {
		return "", errors.Wrapf(ErrUpload, "post: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", errors.Wrapf(ErrUpload, "read response: %v", err)
	}

	var parsed imgbbResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", errors.Wrapf(ErrUpload, "status %d, malformed response: %v", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK || !parsed.Success || parsed.Data.URL == "" {
		msg := parsed.Error.Message
		if msg == "" {
			msg = "no url in response"
		}
		return "", errors.Wrapf(ErrUpload, "status %d: %s", resp.StatusCode, msg)
	}

	log.Debug().Str("name", name).Str("url", parsed.Data.URL).Msg("image uploaded")
	return parsed.Data.URL, nil
}
