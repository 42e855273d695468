package utils

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/oklog/ulid/v2"
)

var (
	ErrEmptyImage    = errors.New("no image provided")
	ErrInvalidImage  = errors.New("image payload is not valid base64")
	ErrNotAnImage    = errors.New("payload is not an image")
	ErrImageTooLarge = errors.New("image size exceeds limit")
)

// Image is a decoded still frame.
type Image struct {
	Data     []byte
	MimeType string
	Ext      string
}

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	DecodeImagePayload(payload string) (Image, error)
	EncodeDataURL(img Image) string
}

type utils struct {
	maxFileSize int
}

func New() IUtils {
	return &utils{
		maxFileSize: 10 * 1024 * 1024,
	}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

// DecodeImagePayload accepts either a data URL (data:image/jpeg;base64,...)
// or bare base64 and returns the raw bytes with the sniffed mime type.
func (u *utils) DecodeImagePayload(payload string) (Image, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return Image{}, ErrEmptyImage
	}

	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ",")
		if idx < 0 {
			return Image{}, ErrInvalidImage
		}
		payload = payload[idx+1:]
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > u.maxFileSize {
		return Image{}, ErrImageTooLarge
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return Image{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
	}
	if len(data) == 0 {
		return Image{}, ErrEmptyImage
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return Image{}, ErrNotAnImage
	}

	return Image{
		Data:     data,
		MimeType: mtype.String(),
		Ext:      mtype.Extension(),
	}, nil
}

func (u *utils) EncodeDataURL(img Image) string {
	mimeType := img.MimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
