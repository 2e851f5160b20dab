// Package images provides illustration encoding helpers: data-URI
// conversion and blur-hash placeholders for stored story artwork.
package images

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const dataURIPrefix = "data:"

// IsDataURI reports whether s looks like a data URI.
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, dataURIPrefix)
}

// DecodeDataURI splits a base64 data URI into raw bytes and its MIME type.
// Accepts the canonical form "data:<mime>;base64,<payload>".
func DecodeDataURI(uri string) (data []byte, mime string, err error) {
	if !IsDataURI(uri) {
		return nil, "", fmt.Errorf("not a data URI")
	}

	meta, payload, found := strings.Cut(uri[len(dataURIPrefix):], ",")
	if !found {
		return nil, "", fmt.Errorf("malformed data URI: missing payload separator")
	}

	mime, encoding, _ := strings.Cut(meta, ";")
	if encoding != "base64" {
		return nil, "", fmt.Errorf("unsupported data URI encoding %q", encoding)
	}

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode data URI payload: %w", err)
	}
	return data, mime, nil
}

// EncodeDataURI renders raw bytes as a base64 data URI with the given MIME type.
func EncodeDataURI(data []byte, mime string) string {
	return dataURIPrefix + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
