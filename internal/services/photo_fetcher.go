package services

import (
	"context"
	"io"
	"net/http"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/pkg/errors"
)

const maxPhotoBytes = 20 << 20

// FileSource resolves Telegram file ids to download links. *bot.Bot satisfies it.
type FileSource interface {
	GetFile(ctx context.Context, params *bot.GetFileParams) (*tgmodels.File, error)
	FileDownloadLink(f *tgmodels.File) string
}

// PhotoFetcher downloads photos users sent to the bot.
type PhotoFetcher struct {
	files  FileSource
	client *http.Client
}

func NewPhotoFetcher(files FileSource, client *http.Client) *PhotoFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &PhotoFetcher{files: files, client: client}
}

func (f *PhotoFetcher) Fetch(ctx context.Context, fileID string) ([]byte, error) {
	file, err := f.files.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, errors.Wrapf(ErrDownload, "get file %s: %v", fileID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.files.FileDownloadLink(file), nil)
	if err != nil {
		return nil, errors.Wrapf(ErrDownload, "build request: %v", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(ErrDownload, "get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(ErrDownload, "status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
	if err != nil {
		return nil, errors.Wrapf(ErrDownload, "read body: %v", err)
	}
	return data, nil
}
