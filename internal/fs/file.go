// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package fs

import (
	"context"
	"io"
	"strings"

	"gopkg.keel-lang.org/keelc/internal/idl"
)

// NewFileString returns a source file held in memory. Tests and the token
// dumps use it to lex text that never touched the disk.
func NewFileString(path string, content string, kind idl.FileKind) idl.File {
	return NewFileFN(path, func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(content)), nil
	}, kind)
}

// NewFileFN returns a source file whose content is produced by open. Every
// call to Body calls open again so a file can be lexed more than once, as the
// watch loop does on each rebuild. Bodies from separate calls may be read
// concurrently.
func NewFileFN(path string, open func() (io.ReadCloser, error), kind idl.FileKind) idl.File {
	return &sourceFile{
		path: path,
		kind: kind,
		open: open,
	}
}

type sourceFile struct {
	path string
	kind idl.FileKind
	open func() (io.ReadCloser, error)
}

func (self *sourceFile) Path(ctx context.Context) string {
	return self.path
}

func (self *sourceFile) Kind(ctx context.Context) idl.FileKind {
	return self.kind
}

func (self *sourceFile) Body(ctx context.Context) (idl.FileBody, error) {
	rc, err := self.open()
	if err != nil {
		return nil, fsErr(self.path, err)
	}
	return newReaderBody(rc), nil
}
