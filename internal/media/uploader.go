// Package media resolves cover-image values into hosted URLs.
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/inkpress/inkpress/internal/apperr"
)

const dataURLPrefix = "data:image"

var mediaLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	mediaLogger = l
}

// Uploader stores raw image bytes in object storage and returns a durable
// URL. Re-uploading identical bytes yields a fresh object and URL each
// time; callers must not assume stable URLs across uploads.
type Uploader interface {
	Upload(ctx context.Context, contentType string, data []byte) (string, error)
}

// Resolve turns a cover-image value into a hosted URL. An already-hosted
// URL passes through unchanged; a data URL is decoded and uploaded within
// the given timeout; empty input stays empty. Failures (including timeout
// and a missing uploader) come back as *apperr.UploadError so the publish
// pipeline can absorb them.
func Resolve(ctx context.Context, up Uploader, value string, timeout time.Duration) (string, error) {
	if value == "" {
		return "", nil
	}
	if !strings.HasPrefix(value, dataURLPrefix) {
		return value, nil
	}

	contentType, data, err := DecodeDataURL(value)
	if err != nil {
		return "", &apperr.UploadError{Err: err}
	}
	if up == nil {
		return "", &apperr.UploadError{Err: errors.New("no object storage configured")}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	url, err := up.Upload(ctx, contentType, data)
	if err != nil {
		return "", &apperr.UploadError{Err: err}
	}
	return url, nil
}

// DecodeDataURL splits a "data:image/png;base64,..." value into its content
// type and decoded payload.
func DecodeDataURL(s string) (contentType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URL")
	}

	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return "", nil, fmt.Errorf("malformed data URL: missing payload")
	}

	meta := rest[:comma]
	contentType, ok = strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("unsupported data URL encoding: %s", meta)
	}

	data, err = base64.StdEncoding.DecodeString(rest[comma+1:])
	if err != nil {
		return "", nil, fmt.Errorf("decoding data URL payload: %w", err)
	}
	return contentType, data, nil
}
