// Package blobstore keeps product image binaries in object storage.
package blobstore

import (
	"errors"
	"net/url"
	"strings"
)

var ErrInvalidKey = errors.New("invalid object key")

// objectURL joins the public base and the escaped key segments.
func objectURL(base, key string) string {
	segs := strings.Split(key, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segs, "/")
}
