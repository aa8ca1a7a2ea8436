package file2pdf

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/alnah/go-file2pdf/internal/fileutil"
)

// Render navigates s to the file at sourcePath, prints it with default
// parameters and returns the base64 payload. A reply that is not a JSON
// string yields *UnexpectedResponseError.
func Render(ctx context.Context, s *Session, sourcePath string) (string, error) {
	target, err := FileURL(sourcePath)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNavigate, err)
	}

	if err := s.wd.Navigate(ctx, target); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrNavigate, target, err)
	}

	value, err := s.wd.Print(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPrint, err)
	}
	return payloadOf(value)
}

// payloadOf checks the print value shape.
func payloadOf(value gjson.Result) (string, error) {
	if value.Type != gjson.String {
		return "", &UnexpectedResponseError{Raw: value.Raw}
	}
	return value.Str, nil
}

// FileURL returns the file:// URL of path made absolute.
func FileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	return fileutil.FileURL(abs), nil
}

// WritePayload decodes standard base64 from payload into w as a stream and
// returns the number of decoded bytes written. Bytes written before a
// failure stay written.
func WritePayload(payload string, w io.Writer) (int64, error) {
	dec := base64.NewDecoder(base64.StdEncoding, strings.NewReader(payload))
	sw := &sinkWriter{w: w}

	n, err := io.Copy(sw, dec)
	if err != nil {
		if sw.err != nil {
			return n, fmt.Errorf("%w: %w", ErrSink, sw.err)
		}
		return n, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return n, nil
}

// sinkWriter records write failures so they can be told apart from decode
// failures after io.Copy.
type sinkWriter struct {
	w   io.Writer
	err error
}

func (s *sinkWriter) Write(p []byte) (int, error) {
	n, err := s.w.Write(p)
	if err != nil {
		s.err = err
	}
	return n, err
}
