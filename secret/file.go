package secret

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// ErrIO is wrapped by every error caused by reading or writing the store file.
var ErrIO = errors.New("store file i/o failure")

const (
	tokenSeparator = "|"
	fileMode       = 0o600
	dirMode        = 0o700
)

type file struct {
	path string
}

func newFile(path string) *file {
	return &file{path: path}
}

// readTokens returns the whitespace-stripped tokens of the file, skipping the
// empty ones.
func (f *file) readTokens() ([]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, ioFailure(err)
	}
	var tokens []string
	for _, part := range strings.Split(string(data), tokenSeparator) {
		token := deleteWhitespace(part)
		if token == "" {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

// writeBlobs hex-encodes each blob and replaces the file content. The data is
// written to a temporary file in the same directory which is then renamed
// over the store, so a crash never leaves a truncated store behind.
func (f *file) writeBlobs(blobs [][]byte) error {
	var buf bytes.Buffer
	for i, blob := range blobs {
		if i > 0 {
			buf.WriteString(tokenSeparator)
			buf.WriteByte('\n')
		}
		buf.WriteString(hex.EncodeToString(blob))
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return ioFailure(err)
	}
	tmpPath := tmp.Name()
	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return ioFailure(err)
	}
	if err := tmp.Chmod(fileMode); err != nil {
		return fail(err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return ioFailure(err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		_ = os.Remove(tmpPath)
		return ioFailure(err)
	}
	return nil
}

// ioError keeps the underlying os error while matching ErrIO.
type ioError struct {
	err error
}

func ioFailure(err error) error {
	return &ioError{err: err}
}

func (e *ioError) Error() string { return e.err.Error() }

func (e *ioError) Unwrap() error { return e.err }

func (e *ioError) Is(target error) bool { return target == ErrIO }

func deleteWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// CreateStoreFile makes sure an empty store file exists at path, creating the
// parent directories when needed. It fails when path is a directory or when
// the file cannot be read.
func CreateStoreFile(path string) error {
	fi, err := os.Stat(path)
	switch {
	case err == nil:
		if fi.IsDir() {
			return errors.Errorf("store path %q is a directory", path)
		}
	case os.IsNotExist(err):
		if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
			return errors.Wrapf(err, "cannot create store directory for %q", path)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, fileMode)
		if err != nil {
			return errors.Wrapf(err, "cannot create store file %q", path)
		}
		if err := f.Close(); err != nil {
			return errors.Wrapf(err, "cannot create store file %q", path)
		}
	default:
		return errors.Wrapf(err, "cannot stat store path %q", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "store file %q is not readable", path)
	}
	return f.Close()
}
