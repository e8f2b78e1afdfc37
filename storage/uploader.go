package storage

import (
	"context"
	"fmt"
	"io"
)

// UploadResult описывает загруженный герб.
type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader — объектное хранилище для гербов баба.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

// CrestKey возвращает ключ герба баба. Ключ фиксирован для баба,
// повторная загрузка замещает объект.
func CrestKey(babaID int) string {
	return fmt.Sprintf("babas/%d/crest", babaID)
}
