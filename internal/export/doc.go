// Package export serializes a survey session for download.
//
// JSON exports carry the full stored session plus a catalog fingerprint and
// export time. CSV exports flatten one row per question record in stored
// order. Neither format mutates the session.
package export
