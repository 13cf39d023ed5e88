// Package cover converts book cover images between the data URI strings used
// on the wire and the raw bytes kept in the store.
package cover

import (
	"encoding/base64"
	"errors"
	"strings"
)

const jpegPrefix = "data:image/jpeg;base64,"

var ErrInvalid = errors.New("invalid cover image payload")

// Decode accepts either a data URI ("data:<mime>;base64,<payload>") or a bare
// base64 payload. An empty string decodes to nil.
func Decode(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if strings.HasPrefix(s, "data:") {
		comma := strings.IndexByte(s, ',')
		if comma < 0 || !strings.HasSuffix(s[:comma], ";base64") {
			return nil, ErrInvalid
		}
		s = s[comma+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrInvalid
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return raw, nil
}

// Encode renders stored bytes as a JPEG data URI. Empty input yields "".
func Encode(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	return jpegPrefix + base64.StdEncoding.EncodeToString(raw)
}
