package target

import (
	"net/url"
	"path/filepath"
)

// Normalize processes a given compile target and converts it into a standard
// form.
//
// The compiler allows targets to be any valid URI or file path. When the target
// is a file path or a file URI then we convert the paths to an absolute,
// slash separated form rooted at the search roots. All non-file URIs are left
// as-is with the expectation that they will be handled by some other
// implementation.
func Normalize(target string) string {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "" && u.Scheme != "file") {
		return target
	}
	if u.Scheme == "file" {
		target = u.Path
	}
	if target == "" || target == "." {
		return "/"
	}
	return filepath.ToSlash(filepath.Join("/", filepath.FromSlash(target)))
}
