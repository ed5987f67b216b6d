package utils

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

var ErrInvalidDataURL = errors.New("invalid data URL")

// DataURL renders binary data as a base64 data URL.
func DataURL(mime string, data []byte) string {
	if mime == "" {
		mime = http.DetectContentType(data)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL parses a base64 data URL. Bare base64 without the data: prefix
// is also accepted and its MIME type is sniffed.
func DecodeDataURL(s string) (data []byte, mime string, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, "", ErrInvalidDataURL
	}

	payload := s
	if rest, ok := strings.CutPrefix(s, "data:"); ok {
		meta, encoded, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(meta, ";base64") {
			return nil, "", ErrInvalidDataURL
		}
		mime = strings.TrimSuffix(meta, ";base64")
		payload = encoded
	}

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", errors.Join(ErrInvalidDataURL, err)
	}
	if mime == "" {
		mime = http.DetectContentType(data)
	}
	return data, mime, nil
}
