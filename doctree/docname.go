package doctree

import (
	"path"
	"strings"
)

// JoinDocname resolves target relative to the directory of fromDoc.
// Targets starting with "/" are project absolute. Known source suffixes
// are dropped so "install.md" and "install" name the same document.
func JoinDocname(fromDoc, target string) string {
	target = strings.TrimSpace(target)
	if target == "" {
		return ""
	}
	target = TrimSourceSuffix(target)
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	joined := path.Join(path.Dir(fromDoc), target)
	return strings.TrimPrefix(joined, "./")
}

// TrimSourceSuffix removes a recognised source file suffix.
func TrimSourceSuffix(name string) string {
	for _, suffix := range []string{".md", ".markdown", ".json"} {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}
