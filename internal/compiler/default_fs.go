// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"path/filepath"
	"strings"

	"gopkg.keel-lang.org/keelc/internal/fs"
	"gopkg.keel-lang.org/keelc/internal/idl"
)

// NewDefaultFS returns a file system over the search roots named by KEEL_PATH
// or, when it is unset, the platform data directories.
func NewDefaultFS(lookup func(string) (string, bool)) (idl.FileSystem, error) {
	return NewRootsFS(DefaultRoots(lookup))
}

// NewRootsFS returns a file system that searches roots in order. Directory
// targets open every Keel file below them.
func NewRootsFS(roots []string) (fs.FileSystemMulti, error) {
	f := make(fs.FileSystemMulti, 0, len(roots))
	for _, root := range roots {
		absRoot, errAbs := filepath.Abs(root)
		if errAbs != nil {
			return nil, errAbs
		}
		rf, err := fs.NewFileSystemLocal(absRoot, fs.WithOptionRecursive())
		if err != nil {
			return nil, err
		}
		f = append(f, rf)
	}
	return f, nil
}

// DefaultRoots lists the search roots used when none are configured.
func DefaultRoots(lookup func(string) (string, bool)) []string {
	if v, ok := lookup("KEEL_PATH"); ok && v != "" {
		var roots []string
		for _, p := range strings.Split(v, string(filepath.ListSeparator)) {
			if p != "" {
				roots = append(roots, p)
			}
		}
		return roots
	}
	return getDefaultRoots(lookup)
}
