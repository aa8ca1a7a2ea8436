// Package file2pdf prints local documents to PDF through Firefox, driven by
// geckodriver over the W3C WebDriver protocol.
//
// # Quick Start
//
//	conv := file2pdf.NewConverter(
//	    file2pdf.WithGeckodriver("/usr/local/bin/geckodriver"),
//	)
//	res, err := conv.Convert(ctx, file2pdf.Request{
//	    Source:          "report.html",
//	    UpdateExtension: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Destination) // report.pdf
//
// # Pipeline
//
// One conversion runs three stages in order, each owning the previous one:
//
//  1. Process supervision: geckodriver is started on a loopback port with
//     its output drained into the logger, and polled until ready
//     (internal/supervisor).
//  2. Session: a WebDriver session is negotiated with headless or headed
//     Firefox capabilities (Connect). The Session owns the process.
//  3. Print: the browser navigates to the file:// URL of the source, prints
//     it, and the base64 reply is decoded as a stream into the destination
//     (Render, WritePayload).
//
// Teardown is deferred: the session is deleted and the process group killed
// on every return path, including errors and context cancellation.
//
// Markdown sources are first rendered to a temporary HTML document.
//
// # Destinations
//
// The output goes, first match wins, to the explicit out file, to the source
// path with its extension replaced by .pdf, or to standard output. See
// ResolveDestination.
//
// # Errors
//
// Each stage wraps its failure with a sentinel (ErrSpawn, ErrNotReady,
// ErrConnect, ErrNavigate, ErrPrint, ErrUnexpectedResponse, ErrDecode,
// ErrSink) so callers can branch with errors.Is while the message keeps the
// full cause chain.
package file2pdf
