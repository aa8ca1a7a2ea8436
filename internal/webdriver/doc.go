// Package webdriver is a minimal W3C WebDriver client covering what a
// print-to-PDF run needs: server status, session creation, navigation, the
// print command and session deletion.
//
// Every reply is the protocol's {"value": ...} envelope. The client hands the
// value back as a gjson.Result so callers can check its shape without
// committing to a Go type up front.
package webdriver
