// Package auth resolves the caller identity of envsync API requests.
package auth

import (
	"path"
	"strings"
)

// DefaultPublicPaths are served without authentication
var DefaultPublicPaths = []string{"/health", "/readiness", "/version"}

// IsPublicPath reports whether requestPath equals or is nested below one of publicPaths.
// Encoded separators never match.
func IsPublicPath(requestPath string, publicPaths []string) bool {
	lowerPath := strings.ToLower(requestPath)
	if strings.Contains(lowerPath, "%2f") || strings.Contains(lowerPath, "%2e") {
		return false
	}

	cleanPath := path.Clean("/" + requestPath)
	for _, publicPath := range publicPaths {
		cleanPublicPath := path.Clean("/" + publicPath)
		if cleanPublicPath == "/" {
			return true
		}
		if cleanPath == cleanPublicPath || strings.HasPrefix(cleanPath, cleanPublicPath+"/") {
			return true
		}
	}
	return false
}
