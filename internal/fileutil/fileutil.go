// Package fileutil holds the small filesystem helpers shared by the
// converter, the Markdown renderer and the config loader.
package fileutil

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for temp file creation.
var (
	ErrExtensionEmpty         = errors.New("extension cannot be empty")
	ErrExtensionPathTraversal = errors.New("extension contains path separator or null byte")
)

// tempPrefix names every temp file this module creates.
const tempPrefix = "file2pdf-"

// WriteTempFile writes content to a new temp file ending in "."+extension.
// The returned cleanup removes the file and is safe to call more than once.
// On error nothing is left on disk.
func WriteTempFile(content, extension string) (path string, cleanup func(), err error) {
	if err := ValidateExtension(extension); err != nil {
		return "", nil, err
	}

	f, err := os.CreateTemp("", tempPrefix+"*."+extension)
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}
	path = f.Name()
	cleanup = func() { _ = os.Remove(path) }

	_, werr := f.WriteString(content)
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("writing temp file: %w", err)
	}
	return path, cleanup, nil
}

// ValidateExtension rejects extensions that could escape the temp directory.
func ValidateExtension(extension string) error {
	if extension == "" {
		return ErrExtensionEmpty
	}
	if strings.ContainsAny(extension, "/\\\x00") {
		return ErrExtensionPathTraversal
	}
	return nil
}

// FileExists reports whether path names something other than a directory.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// IsFilePath reports whether s should be read as a path rather than a
// config name: anything with a / or \ in it.
//
//	"work"                 -> false
//	"./file2pdf.yaml"      -> true
//	"/etc/file2pdf.toml"   -> true
//	"C:\conf\file2pdf.yml" -> true
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// FileURL converts an absolute path to a file:// URL, percent-encoding
// what needs it. Windows drive paths get the leading slash the scheme wants.
func FileURL(absPath string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(absPath)}
	if !strings.HasPrefix(u.Path, "/") {
		u.Path = "/" + u.Path
	}
	return u.String()
}
