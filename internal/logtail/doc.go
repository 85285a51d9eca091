// Package logtail reads and formats labctl's own log file for the
// `labctl logs` command.
//
// Read keeps a ring buffer of maxLines entries, so memory stays
// O(maxLines) regardless of file size and the file is scanned once.
// A missing file is not an error; it simply has no lines yet.
//
// Parse understands logrus's text formatter output:
//
//	time="2025-01-02T10:00:00Z" level=warning msg="mutation failed" component=state kind=delete
//
// FilterLevel and Colorize build on it. Lines that do not look like logrus
// output pass through untouched.
package logtail
