package file2pdf

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/alnah/go-file2pdf/internal/webdriver"
	"github.com/alnah/go-file2pdf/internal/webdrivertest"
)

// newTestSession opens a WebDriver session on an in-process fake. The
// returned Session has no process attached and must not be closed.
func newTestSession(t *testing.T, cfg webdrivertest.Config) (*Session, *webdrivertest.Handler) {
	t.Helper()

	h := webdrivertest.NewHandler(cfg)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	wd, err := webdriver.NewClient(srv.URL, srv.Client()).NewSession(context.Background(), Capabilities(true))
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	return &Session{wd: wd}, h
}

// ---------------------------------------------------------------------------
// TestRender - Navigate and Print
// ---------------------------------------------------------------------------

func TestRender_ReturnsPayload(t *testing.T) {
	t.Parallel()

	sess, h := newTestSession(t, webdrivertest.Config{})
	source := filepath.Join(t.TempDir(), "page.html")

	payload, err := Render(context.Background(), sess, source)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := base64.StdEncoding.EncodeToString([]byte(webdrivertest.DefaultPayload))
	if payload != want {
		t.Errorf("Render() = %q, want %q", payload, want)
	}

	wantURL, _ := FileURL(source)
	if got := h.Navigated(); len(got) != 1 || got[0] != wantURL {
		t.Errorf("navigated to %v, want [%s]", got, wantURL)
	}
	if h.PrintCount() != 1 {
		t.Errorf("print issued %d times, want 1", h.PrintCount())
	}
}

func TestRender_UnexpectedShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
	}{
		{"object", `{"data":"UERG"}`},
		{"array", `["UERG"]`},
		{"number", `42`},
		{"null", `null`},
		{"boolean", `true`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sess, _ := newTestSession(t, webdrivertest.Config{PrintValue: tt.value})

			_, err := Render(context.Background(), sess, "page.html")
			if !errors.Is(err, ErrUnexpectedResponse) {
				t.Fatalf("Render() error = %v, want ErrUnexpectedResponse", err)
			}
			var shapeErr *UnexpectedResponseError
			if !errors.As(err, &shapeErr) {
				t.Fatalf("Render() error = %T, want *UnexpectedResponseError", err)
			}
			if shapeErr.Raw != tt.value {
				t.Errorf("Raw = %q, want %q", shapeErr.Raw, tt.value)
			}
		})
	}
}

func TestRender_CommandErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfg      webdrivertest.Config
		wantErr  error
		wantCode string
	}{
		{
			name:     "navigate fails",
			cfg:      webdrivertest.Config{NavigateError: "unknown error"},
			wantErr:  ErrNavigate,
			wantCode: "unknown error",
		},
		{
			name:     "print fails",
			cfg:      webdrivertest.Config{PrintError: "unsupported operation"},
			wantErr:  ErrPrint,
			wantCode: "unsupported operation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sess, _ := newTestSession(t, tt.cfg)

			_, err := Render(context.Background(), sess, "page.html")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Render() error = %v, want %v", err, tt.wantErr)
			}
			var wdErr *webdriver.Error
			if !errors.As(err, &wdErr) {
				t.Fatalf("Render() error = %v, want *webdriver.Error in chain", err)
			}
			if wdErr.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", wdErr.Code, tt.wantCode)
			}
		})
	}
}

func TestRender_PrintNotIssuedAfterNavigateFailure(t *testing.T) {
	t.Parallel()

	sess, h := newTestSession(t, webdrivertest.Config{NavigateError: "unknown error"})

	_, _ = Render(context.Background(), sess, "page.html")
	if h.PrintCount() != 0 {
		t.Errorf("print issued %d times after failed navigate, want 0", h.PrintCount())
	}
}

// ---------------------------------------------------------------------------
// TestFileURL
// ---------------------------------------------------------------------------

func TestFileURL(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("unix paths")
	}

	tests := []struct {
		path string
		want string
	}{
		{"/tmp/page.html", "file:///tmp/page.html"},
		{"/tmp/my docs/page.html", "file:///tmp/my%20docs/page.html"},
		{"/tmp/a#b.html", "file:///tmp/a%23b.html"},
	}

	for _, tt := range tests {
		got, err := FileURL(tt.path)
		if err != nil {
			t.Fatalf("FileURL(%q) error = %v", tt.path, err)
		}
		if got != tt.want {
			t.Errorf("FileURL(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestFileURL_RelativeIsMadeAbsolute(t *testing.T) {
	t.Parallel()

	got, err := FileURL("page.html")
	if err != nil {
		t.Fatalf("FileURL() error = %v", err)
	}
	if !strings.HasPrefix(got, "file:///") || !strings.HasSuffix(got, "/page.html") {
		t.Errorf("FileURL() = %q, want an absolute file URL", got)
	}
}

// ---------------------------------------------------------------------------
// TestWritePayload - Streaming Decode
// ---------------------------------------------------------------------------

func TestWritePayload_RoundTrip(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		data := rapid.SliceOf(rapid.Byte()).Draw(t, "data")

		var buf bytes.Buffer
		n, err := WritePayload(base64.StdEncoding.EncodeToString(data), &buf)
		if err != nil {
			t.Fatalf("WritePayload() error = %v", err)
		}
		if n != int64(len(data)) {
			t.Fatalf("WritePayload() = %d bytes, want %d", n, len(data))
		}
		if !bytes.Equal(buf.Bytes(), data) {
			t.Fatalf("decoded %x, want %x", buf.Bytes(), data)
		}
	})
}

func TestWritePayload_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := WritePayload("", &buf)
	if err != nil || n != 0 || buf.Len() != 0 {
		t.Errorf("WritePayload(\"\") = %d, %v; wrote %d bytes", n, err, buf.Len())
	}
}

func TestWritePayload_DecodeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
	}{
		{"invalid character", "UERG!!!!"},
		{"truncated", "UERGLURBVEE"},
		{"url alphabet", "-_-_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			_, err := WritePayload(tt.payload, &buf)
			if !errors.Is(err, ErrDecode) {
				t.Errorf("WritePayload(%q) error = %v, want ErrDecode", tt.payload, err)
			}
		})
	}
}

func TestWritePayload_PartialBytesKept(t *testing.T) {
	t.Parallel()

	// A large valid prefix followed by garbage: the prefix is flushed
	// before the decoder hits the bad quantum.
	prefix := bytes.Repeat([]byte("PDF-DATA"), 4096)
	payload := base64.StdEncoding.EncodeToString(prefix) + "!!!!"

	var buf bytes.Buffer
	n, err := WritePayload(payload, &buf)
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("WritePayload() error = %v, want ErrDecode", err)
	}
	if n == 0 || int64(buf.Len()) != n {
		t.Errorf("WritePayload() reported %d bytes, buffer holds %d", n, buf.Len())
	}
	if !bytes.HasPrefix(prefix, buf.Bytes()) {
		t.Error("partially written bytes are not a prefix of the payload")
	}
}

type failingWriter struct{ after int }

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.after <= 0 {
		return 0, errors.New("disk full")
	}
	w.after--
	return len(p), nil
}

func TestWritePayload_SinkError(t *testing.T) {
	t.Parallel()

	payload := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0xff}, 1<<16))

	_, err := WritePayload(payload, &failingWriter{after: 1})
	if !errors.Is(err, ErrSink) {
		t.Fatalf("WritePayload() error = %v, want ErrSink", err)
	}
	if errors.Is(err, ErrDecode) {
		t.Errorf("WritePayload() error = %v, sink failure reported as decode error", err)
	}
}

// ---------------------------------------------------------------------------
// TestCapabilities
// ---------------------------------------------------------------------------

func TestCapabilities(t *testing.T) {
	t.Parallel()

	headless := Capabilities(true)[firefoxOptionsKey].(map[string]any)
	args, ok := headless["args"].([]string)
	if !ok || len(args) != 1 || args[0] != "--headless" {
		t.Errorf("headless args = %v, want [--headless]", headless["args"])
	}

	headed := Capabilities(false)[firefoxOptionsKey].(map[string]any)
	if len(headed) != 0 {
		t.Errorf("headed options = %v, want empty", headed)
	}
}

// ---------------------------------------------------------------------------
// TestUnexpectedResponseError
// ---------------------------------------------------------------------------

func TestUnexpectedResponseError_Message(t *testing.T) {
	t.Parallel()

	short := &UnexpectedResponseError{Raw: `{"a":1}`}
	if !strings.Contains(short.Error(), `{"a":1}`) {
		t.Errorf("Error() = %q, want raw value", short.Error())
	}

	long := &UnexpectedResponseError{Raw: "[" + strings.Repeat("1,", 500) + "1]"}
	if len(long.Error()) > maxRawInError+100 {
		t.Errorf("Error() length %d, want truncated", len(long.Error()))
	}
	if !strings.HasSuffix(long.Error(), "...") {
		t.Errorf("Error() = %q, want truncation marker", long.Error()[:20]+"..."+strconv.Itoa(len(long.Error())))
	}
}
