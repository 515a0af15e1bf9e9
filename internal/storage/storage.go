package storage

import "errors"

var (
	ErrGalleryNotFound = errors.New("gallery not found")
	ErrSlugTaken       = errors.New("gallery slug already taken")
	ErrPhotoNotFound   = errors.New("photo not found")
	ErrEventNotFound   = errors.New("event not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrCacheMiss       = errors.New("cache miss")
)

var (
	ErrFileTooLarge    = errors.New("file size exceeds limit")
	ErrInvalidFileType = errors.New("invalid file type")
	ErrObjectNotFound  = errors.New("object not found")
)
