// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package iter

import (
	"bufio"
	"context"
	"errors"
	"io"

	"gopkg.keel-lang.org/keelc/internal/idl"
	"gopkg.keel-lang.org/keelc/internal/optional"
)

// NewUnicodeFileBody converts a FileBody into an iterator of code points.
// Invalid UTF-8 sequences decode as utf8.RuneError.
func NewUnicodeFileBody(ctx context.Context, b idl.FileBody) idl.Iterator[idl.CodePoint] {
	rc := &fileBodyIO{
		ctx:  ctx,
		body: b,
	}
	return &fileBody{
		closer: rc,
		reader: bufio.NewReader(rc),
	}
}

type fileBody struct {
	closer io.Closer
	reader *bufio.Reader
	err    error
}

func (f *fileBody) Next(ctx context.Context) optional.Optional[idl.CodePoint] {
	if f.err != nil {
		return optional.None[idl.CodePoint]()
	}
	r, _, err := f.reader.ReadRune()
	if err != nil {
		f.err = err
		return optional.None[idl.CodePoint]()
	}
	return optional.Some(idl.CodePoint(r))
}

// Close releases the body and returns the first read error other than EOF.
func (f *fileBody) Close(context.Context) error {
	_ = f.closer.Close()
	if f.err != nil && !errors.Is(f.err, io.EOF) {
		return f.err
	}
	return nil
}

type fileBodyIO struct {
	ctx  context.Context
	body idl.FileBody
}

func (self *fileBodyIO) Read(p []byte) (int, error) {
	b, err := self.body.Read(self.ctx, int32(len(p)))
	n := copy(p, b)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, err
	}
	if errors.Is(err, io.EOF) {
		return n, io.EOF
	}
	return n, nil
}

func (self *fileBodyIO) Close() error {
	return self.body.Close(self.ctx)
}
