package services

import "github.com/pkg/errors"

var (
	ErrInvalidAdminID = errors.New("admin id must contain only digits")
	ErrAdminExists    = errors.New("admin already exists")
	ErrAdminNotFound  = errors.New("admin not found")
	ErrLastAdmin      = errors.New("cannot remove the only admin")
	ErrSelfRemoval    = errors.New("cannot remove yourself")

	ErrUpload           = errors.New("image upload failed")
	ErrUploaderDisabled = errors.New("image uploader is not configured")
	ErrDownload         = errors.New("photo download failed")
)
