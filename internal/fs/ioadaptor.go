// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package fs

import (
	"bufio"
	"context"
	"errors"
	"io"

	"gopkg.keel-lang.org/keelc/internal/exc"
	"gopkg.keel-lang.org/keelc/internal/idl"
)

// readerBody serves a source file to the lexer in chunks. The end of the
// file is signalled with an exc.CodeEOF exception that wraps io.EOF, so
// callers can match either.
type readerBody struct {
	r     *bufio.Reader
	c     io.Closer
	chunk []byte
}

func newReaderBody(rc io.ReadCloser) idl.FileBody {
	return &readerBody{r: bufio.NewReader(rc), c: rc}
}

func (self *readerBody) Read(ctx context.Context, size int32) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cap(self.chunk) < int(size) {
		self.chunk = make([]byte, size)
	}
	n, err := self.r.Read(self.chunk[:size])
	switch {
	case errors.Is(err, io.EOF):
		return self.chunk[:n], exc.Wrap(exc.Location{}, exc.CodeEOF, err)
	case err != nil:
		return nil, exc.WrapUnknown(exc.Location{}, err)
	}
	return self.chunk[:n], nil
}

func (self *readerBody) Close(ctx context.Context) error {
	return self.c.Close()
}
