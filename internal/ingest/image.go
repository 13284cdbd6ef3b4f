// Package ingest turns an uploaded image into a self-contained data URI that
// can be embedded in a multimodal model request.
package ingest

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
)

var ErrIngestion = errors.New("image ingestion failed")

const (
	MediaTypeJPEG = "image/jpeg"
	MediaTypePNG  = "image/png"
)

// UploadedImage is the raw upload as received from the user. It is read once and never mutated.
type UploadedImage struct {
	Data      []byte
	MediaType string
	Filename  string
}

// EncodedImageReference has the form data:<mime>;base64,<payload>.
type EncodedImageReference string

// Encode builds the data URI for img using its declared media type verbatim.
// Acceptance of the media type is the caller's concern; only empty input is rejected.
func Encode(img UploadedImage) (EncodedImageReference, error) {
	if len(img.Data) == 0 {
		return "", fmt.Errorf("%w: image is empty", ErrIngestion)
	}
	if img.MediaType == "" {
		return "", fmt.Errorf("%w: media type is missing", ErrIngestion)
	}

	payload := base64.StdEncoding.EncodeToString(img.Data)
	return EncodedImageReference("data:" + img.MediaType + ";base64," + payload), nil
}

func (r EncodedImageReference) String() string {
	return string(r)
}

// Decode splits the reference back into its media type and raw bytes.
func (r EncodedImageReference) Decode() (string, []byte, error) {
	rest, ok := strings.CutPrefix(string(r), "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: reference is not a data URI", ErrIngestion)
	}

	mediaType, payload, ok := strings.Cut(rest, ";base64,")
	if !ok || mediaType == "" {
		return "", nil, fmt.Errorf("%w: reference is not base64 encoded", ErrIngestion)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrIngestion, err)
	}

	return mediaType, data, nil
}

// DetectMediaType resolves the media type of an upload from its file extension,
// falling back to the declared Content-Type header and finally to content sniffing.
func DetectMediaType(filename, declared string, data []byte) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return MediaTypeJPEG
	case ".png":
		return MediaTypePNG
	}

	declared = strings.ToLower(strings.TrimSpace(declared))
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}

	if len(data) > 0 {
		sniffed := http.DetectContentType(data)
		if mediaType, _, ok := strings.Cut(sniffed, ";"); ok {
			return mediaType
		}
		return sniffed
	}

	return declared
}

var acceptedMediaTypes = map[string]bool{
	MediaTypeJPEG: true,
	"image/jpg":   true,
	MediaTypePNG:  true,
}

// IsAccepted reports whether mediaType is one of the image types the upload surfaces allow.
func IsAccepted(mediaType string) bool {
	return acceptedMediaTypes[strings.ToLower(mediaType)]
}

// AcceptedExtensions lists the file extensions offered by the file picker.
func AcceptedExtensions() []string {
	return []string{".jpg", ".jpeg", ".png"}
}
