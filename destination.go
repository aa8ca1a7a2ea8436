package file2pdf

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DestinationKind tells where the PDF goes.
type DestinationKind int

const (
	DestinationStdout DestinationKind = iota
	DestinationFile
)

// pdfExt is the extension given to derived output paths.
const pdfExt = ".pdf"

// Destination is the resolved output of one conversion.
type Destination struct {
	Kind DestinationKind
	Path string // set for DestinationFile
}

// ResolveDestination applies the output precedence: outFile when set, then
// the source path with its extension replaced by .pdf when updateExtension
// is set, then standard output.
func ResolveDestination(source, outFile string, updateExtension bool) Destination {
	switch {
	case outFile != "":
		return Destination{Kind: DestinationFile, Path: outFile}
	case updateExtension:
		return Destination{Kind: DestinationFile, Path: ReplaceExtension(source, pdfExt)}
	default:
		return Destination{Kind: DestinationStdout}
	}
}

// ReplaceExtension swaps the extension of path's last element for ext.
// A leading dot does not start an extension, so ".rc" becomes ".rc.pdf".
func ReplaceExtension(path, ext string) string {
	dir, base := filepath.Split(path)
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return dir + base + ext
}

// String returns the file path, or "<stdout>".
func (d Destination) String() string {
	if d.Kind == DestinationFile {
		return d.Path
	}
	return "<stdout>"
}

// Open returns a writer for the destination. For DestinationStdout it wraps
// stdout and Close is a no-op. For DestinationFile the file is created or
// truncated.
func (d Destination) Open(stdout io.Writer) (io.WriteCloser, error) {
	if d.Kind != DestinationFile {
		return nopCloser{stdout}, nil
	}
	f, err := os.Create(d.Path) // #nosec G304 -- output path is user-provided
	if err != nil {
		return nil, fmt.Errorf("%w: creating %s: %w", ErrSink, d.Path, err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
