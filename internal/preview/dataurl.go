package preview

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var ErrNotDataURL = errors.New("not a data URL")

// EncodeDataURL returns data:<mime>;base64,<payload>.
func EncodeDataURL(mimeType string, b []byte) string {
	mt := strings.TrimSpace(mimeType)
	if mt == "" {
		mt = "application/octet-stream"
	}
	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(b)
}

// DecodeDataURL returns the MIME type and payload bytes of a data URL.
// Both base64 and percent-encoded payloads are accepted.
func DecodeDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(s), "data:")
	if !ok {
		return "", nil, ErrNotDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing payload separator", ErrNotDataURL)
	}

	isBase64 := false
	mt := ""
	for i, part := range strings.Split(meta, ";") {
		part = strings.TrimSpace(part)
		switch {
		case i == 0:
			mt = part
		case strings.EqualFold(part, "base64"):
			isBase64 = true
		}
	}
	if mt == "" {
		mt = "text/plain"
	}

	if !isBase64 {
		text, err := url.PathUnescape(payload)
		if err != nil {
			return "", nil, err
		}
		return mt, []byte(text), nil
	}
	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Some encoders drop padding.
		if b2, err2 := base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); err2 == nil {
			return mt, b2, nil
		}
		return "", nil, err
	}
	return mt, b, nil
}
