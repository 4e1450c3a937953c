// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package fs

import (
	"context"
	"io"
	iofs "io/fs"
	"sort"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"gopkg.keel-lang.org/keelc/internal/exc"
	"gopkg.keel-lang.org/keelc/internal/idl"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"main.keel":          &fstest.MapFile{Data: []byte("fn main() {}")},
		"notes.txt":          &fstest.MapFile{Data: []byte("ignored")},
		"math/add.keel":      &fstest.MapFile{Data: []byte("fn add() {}")},
		"math/deep/sub.keel": &fstest.MapFile{Data: []byte("fn sub() {}")},
		"empty/readme.md":    &fstest.MapFile{Data: []byte("nothing")},
	}
}

func paths(ctx context.Context, files []idl.File) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Path(ctx))
	}
	sort.Strings(out)
	return out
}

func TestFileSystemLocal(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		target    string
		options   []FileSystemLocalOption
		expected  []string
		errorCode string
	}{
		{
			name:     "single file",
			target:   "/main.keel",
			expected: []string{"/main.keel"},
		},
		{
			name:     "directory is flat by default",
			target:   "/math",
			expected: []string{"/math/add.keel"},
		},
		{
			name:     "recursive directory",
			target:   "/math",
			options:  []FileSystemLocalOption{WithOptionRecursive()},
			expected: []string{"/math/add.keel", "/math/deep/sub.keel"},
		},
		{
			name:     "root",
			target:   "/",
			options:  []FileSystemLocalOption{WithOptionRecursive()},
			expected: []string{"/main.keel", "/math/add.keel", "/math/deep/sub.keel"},
		},
		{
			name:      "directory without sources",
			target:    "/empty",
			errorCode: exc.CodeFileNotFound,
		},
		{
			name:      "missing",
			target:    "/nope.keel",
			errorCode: exc.CodeFileNotFound,
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			options := append([]FileSystemLocalOption{
				WithOptionFSFactory(func(string) iofs.FS { return testFS() }),
			}, testCase.options...)
			f, err := NewFileSystemLocal("/", options...)
			require.NoError(t, err)

			files, err := f.Open(ctx, testCase.target)
			if testCase.errorCode != "" {
				require.Error(t, err)
				var e exc.Exception
				require.ErrorAs(t, err, &e)
				require.Equal(t, testCase.errorCode, e.Code())
				return
			}
			require.NoError(t, err)
			require.Equal(t, testCase.expected, paths(ctx, files))
			for _, file := range files {
				require.Equal(t, idl.FileKindKeel, file.Kind(ctx))
			}
		})
	}
}

func TestFileString(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := NewFileString("/a.keel", "fn a() {}", idl.FileKindKeel)
	body, err := f.Body(ctx)
	require.NoError(t, err)
	b, err := body.Read(ctx, 64)
	require.Equal(t, "fn a() {}", string(b))
	if err != nil {
		require.ErrorIs(t, err, io.EOF)
	}
	b, err = body.Read(ctx, 64)
	require.Empty(t, b)
	require.ErrorIs(t, err, io.EOF)
	require.NoError(t, body.Close(ctx))
}

func TestFileSystemMulti(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f, err := NewFileSystemLocal("/", WithOptionFSFactory(func(string) iofs.FS { return testFS() }))
	require.NoError(t, err)
	multi := FileSystemMulti{f}

	files, err := multi.Open(ctx, "/main.keel")
	require.NoError(t, err)
	require.Len(t, files, 1)

	_, err = multi.Open(ctx, "/missing.keel")
	var e exc.Exception
	require.ErrorAs(t, err, &e)
	require.Equal(t, exc.CodeFileNotFound, e.Code())

	err = multi.Write(ctx, "/x.keel", "")
	require.ErrorAs(t, err, &e)
	require.Equal(t, exc.CodeUnsuportedFileSystemOperation, e.Code())
}
