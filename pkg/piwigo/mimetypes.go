package piwigo

import (
	"mime"
	"sort"
	"strings"

	"github.com/h2non/filetype"
)

// MimeTypesFromExtensions maps a comma separated extension list such as
// "jpg,jpeg,png,gif" to the sorted, de-duplicated MIME types it covers.
// Extensions with no known MIME type are dropped.
func MimeTypesFromExtensions(list string) []string {
	set := map[string]struct{}{}
	for _, ext := range strings.Split(list, ",") {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext == "" {
			continue
		}
		if mt := mimeTypeForExtension(ext); mt != "" {
			set[mt] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for mt := range set {
		out = append(out, mt)
	}
	sort.Strings(out)
	return out
}

func mimeTypeForExtension(ext string) string {
	if t := filetype.GetType(ext); t != filetype.Unknown && t.MIME.Value != "" {
		return t.MIME.Value
	}
	if mt := mime.TypeByExtension("." + ext); mt != "" {
		return normalizeMimeType(mt)
	}
	return ""
}

// normalizeMimeType lower-cases a media type and strips its parameters.
func normalizeMimeType(mt string) string {
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		return parsed
	}
	return strings.ToLower(strings.TrimSpace(mt))
}

func mimeSet(types []string) map[string]struct{} {
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return set
}

// IsFormatSupported reports whether the server accepts uploads of the given
// MIME type. Before a successful GetStatus or Login nothing is supported.
func (c *Client) IsFormatSupported(mimeType string) bool {
	mt := normalizeMimeType(mimeType)
	if mt == "" {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.accepted[mt]
	return ok
}
