package markup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/alnah/go-file2pdf/internal/fileutil"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// highlightStyle is the chroma style used for fenced code blocks.
const highlightStyle = "github"

// htmlTemplate wraps goldmark's fragment output in a complete HTML5 document.
const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s
</body>
</html>`

var markdownExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".mdown":    true,
	".mkd":      true,
}

// IsMarkdown reports whether path has a Markdown extension.
func IsMarkdown(path string) bool {
	return markdownExtensions[strings.ToLower(filepath.Ext(path))]
}

// Renderer converts Markdown to HTML using goldmark (pure Go).
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a Renderer with GFM extensions and syntax highlighting.
func NewRenderer() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,      // Tables, strikethrough, autolinks, task lists
			extension.Footnote, // [^1] footnotes
			highlighting.NewHighlighting(
				highlighting.WithStyle(highlightStyle),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(false), // no stylesheet ships with the document
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
			gmhtml.WithXHTML(),
		),
	)
	return &Renderer{md: md}
}

// Render converts Markdown content to a standalone HTML5 document titled
// title. Relative image and link paths are resolved against sourceDir;
// an empty sourceDir leaves them unchanged.
//
// Goldmark has no context support, so conversion runs in a goroutine and
// Render returns early on cancellation.
func (r *Renderer) Render(ctx context.Context, content, title, sourceDir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := r.md.Convert([]byte(preprocess(content)), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		body, err := RewriteRelativePaths(convertMarkPlaceholders(buf.String()), sourceDir)
		if err != nil {
			done <- result{err: fmt.Errorf("%w: rewriting paths: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: fmt.Sprintf(htmlTemplate, html.EscapeString(title), body)}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		return res.html, res.err
	}
}

// Prepare returns the path the browser should load for sourcePath.
// Markdown is rendered to a temp HTML file; cleanup removes it and must be
// called once navigation is over. Other sources are returned as is with a
// no-op cleanup.
func (r *Renderer) Prepare(ctx context.Context, sourcePath string) (path string, cleanup func(), err error) {
	if !IsMarkdown(sourcePath) {
		return sourcePath, func() {}, nil
	}

	data, err := os.ReadFile(sourcePath) // #nosec G304 -- source path is user-provided
	if err != nil {
		return "", nil, fmt.Errorf("reading markdown source: %w", err)
	}

	absSource, err := filepath.Abs(sourcePath)
	if err != nil {
		return "", nil, fmt.Errorf("resolving markdown source: %w", err)
	}
	title := strings.TrimSuffix(filepath.Base(absSource), filepath.Ext(absSource))

	doc, err := r.Render(ctx, string(data), title, filepath.Dir(absSource))
	if err != nil {
		return "", nil, err
	}

	return fileutil.WriteTempFile(doc, "html")
}
