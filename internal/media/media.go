// Package media turns files into the data URLs embedded in entries and back.
package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/julianstephens/posy/internal/constants"
	"github.com/julianstephens/posy/internal/models"
)

var (
	ErrTooLarge    = errors.New("attachment is too large")
	ErrUnsupported = errors.New("only images and videos can be attached")
	ErrBadDataURL  = errors.New("malformed data URL")
)

// Attachment is a file ready to be stored on an entry.
type Attachment struct {
	DataURL string
	Type    models.MediaType
	MIME    string
	Size    int
}

// Load reads path, sniffs its content type and encodes it.
func Load(path string) (Attachment, error) {
	f, err := os.Open(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("failed to open attachment: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, constants.MaxMediaBytes+1))
	if err != nil {
		return Attachment{}, fmt.Errorf("failed to read attachment: %w", err)
	}
	return Encode(data)
}

// Encode builds an attachment from raw bytes.
func Encode(data []byte) (Attachment, error) {
	if len(data) > constants.MaxMediaBytes {
		return Attachment{}, fmt.Errorf("%w: limit is %d MiB", ErrTooLarge, constants.MaxMediaBytes>>20)
	}
	mt := mimetype.Detect(data)
	mime := mt.String()
	var kind models.MediaType
	switch {
	case strings.HasPrefix(mime, "image/"):
		kind = models.MediaImage
	case strings.HasPrefix(mime, "video/"):
		kind = models.MediaVideo
	default:
		return Attachment{}, fmt.Errorf("%w (detected %s)", ErrUnsupported, mime)
	}
	return Attachment{
		DataURL: "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data),
		Type:    kind,
		MIME:    mime,
		Size:    len(data),
	}, nil
}

// Decode returns the bytes and MIME type of a base64 data URL.
func Decode(dataURL string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return nil, "", ErrBadDataURL
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", ErrBadDataURL
	}
	mime, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return nil, "", fmt.Errorf("%w: only base64 payloads are supported", ErrBadDataURL)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrBadDataURL, err)
	}
	if mime == "" {
		mime = mimetype.Detect(data).String()
	}
	return data, mime, nil
}

// Extension suggests a file extension for an attachment's MIME type.
func Extension(mime string) string {
	if mt := mimetype.Lookup(mime); mt != nil {
		return mt.Extension()
	}
	return ".bin"
}
