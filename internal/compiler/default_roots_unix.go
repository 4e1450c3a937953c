// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

//go:build aix || darwin || dragonfly || freebsd || (js && wasm) || linux || netbsd || openbsd || solaris

package compiler

import (
	"os"
	"path/filepath"
	"strings"
)

// defaultDataDirs is the XDG fallback when XDG_DATA_DIRS is unset.
const defaultDataDirs = "/usr/local/share/:/usr/share/"

// getDefaultRoots returns a keel directory under each XDG data directory.
// Variables such as $HOME in the list are expanded with lookup. Empty and
// repeated entries are dropped.
func getDefaultRoots(lookup func(string) (string, bool)) []string {
	xdgDirs, ok := lookup("XDG_DATA_DIRS")
	if !ok || xdgDirs == "" {
		xdgDirs = defaultDataDirs
	}
	expand := func(s string) string {
		v, _ := lookup(s)
		return v
	}
	roots := []string{}
	seen := map[string]bool{}
	for _, dataDir := range strings.Split(xdgDirs, ":") {
		dataDir = os.Expand(dataDir, expand)
		if dataDir == "" {
			continue
		}
		root := filepath.Join(dataDir, "keel")
		if seen[root] {
			continue
		}
		seen[root] = true
		roots = append(roots, root)
	}
	return roots
}
