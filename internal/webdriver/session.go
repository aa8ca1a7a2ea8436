package webdriver

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"
)

// Session is a negotiated WebDriver session.
type Session struct {
	client       *Client
	id           string
	capabilities gjson.Result
}

// ID returns the session identifier assigned by the remote end.
func (s *Session) ID() string {
	return s.id
}

// Capabilities returns the capabilities the remote end actually granted.
func (s *Session) Capabilities() gjson.Result {
	return s.capabilities
}

// Issue sends a session-scoped command such as "url" or "print" and returns
// the reply's value member.
func (s *Session) Issue(ctx context.Context, method, command string, body any) (gjson.Result, error) {
	return s.client.do(ctx, method, s.path(command), body)
}

// Navigate loads rawURL in the current browsing context and waits for the
// remote end to report the load as complete.
func (s *Session) Navigate(ctx context.Context, rawURL string) error {
	_, err := s.Issue(ctx, http.MethodPost, "url", map[string]string{"url": rawURL})
	return err
}

// Print renders the current page with the browser's print-to-PDF using the
// protocol defaults. The value is expected to be base64 text; validating that
// is left to the caller.
func (s *Session) Print(ctx context.Context) (gjson.Result, error) {
	return s.Issue(ctx, http.MethodPost, "print", struct{}{})
}

// Close deletes the session, which makes the remote end quit the browser.
func (s *Session) Close(ctx context.Context) error {
	_, err := s.client.do(ctx, http.MethodDelete, "/session/"+url.PathEscape(s.id), nil)
	return err
}

func (s *Session) path(command string) string {
	return "/session/" + url.PathEscape(s.id) + "/" + command
}
