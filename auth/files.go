package auth

import (
	"path"
	"strings"
)

// ProfileImageName derives the stored filename for a profile picture from
// explicit parameters: callers pass the username and the uploaded file's
// extension instead of a middleware closing over request state.
func ProfileImageName(username, ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		ext = "jpg"
	}
	return path.Join("images", username+"."+ext)
}
