package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/roach88/trustlab/internal/catalog"
	"github.com/roach88/trustlab/internal/session"
)

// ErrNoSession is returned when there is nothing to export.
var ErrNoSession = session.ErrNoSession

// Format is an export file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV:
		return f, nil
	}
	return "", fmt.Errorf("unsupported export format %q (want json or csv)", s)
}

type document struct {
	Meta        session.Meta             `json:"meta"`
	State       session.State            `json:"state"`
	Questions   []session.QuestionRecord `json:"questions"`
	ContentHash string                   `json:"contentHash"`
	ExportedAt  session.Timestamp        `json:"exportedAt"`
}

// JSON renders the session with contentHash and exportedAt, indented two
// spaces, without HTML escaping and without a trailing newline.
func JSON(sess *session.Session, cat *catalog.Catalog, now time.Time) ([]byte, error) {
	if sess == nil {
		return nil, ErrNoSession
	}
	hash, err := cat.Fingerprint()
	if err != nil {
		return nil, fmt.Errorf("export json: %w", err)
	}
	doc := document{
		Meta:        sess.Meta,
		State:       sess.State,
		Questions:   sess.Questions,
		ContentHash: hash,
		ExportedAt:  *session.NewTimestamp(now),
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("export json: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// Filename builds "{experimentId}_{participant}_{timestamp}.{ext}". A blank
// participant becomes "anon"; characters outside [A-Za-z0-9_-] become "_".
func Filename(experimentID, participantID string, now time.Time, ext Format) string {
	pid := participantID
	if pid == "" {
		pid = "anon"
	}
	pid = unsafeFilenameChars.ReplaceAllString(pid, "_")
	ts := strings.NewReplacer(":", "-", ".", "-").Replace(session.NewTimestamp(now).String())
	return fmt.Sprintf("%s_%s_%s.%s", experimentID, pid, ts, ext)
}

// Render produces the export bytes for f.
func Render(f Format, sess *session.Session, cat *catalog.Catalog, now time.Time) ([]byte, error) {
	switch f {
	case FormatJSON:
		return JSON(sess, cat, now)
	case FormatCSV:
		return CSV(sess, cat)
	}
	return nil, fmt.Errorf("unsupported export format %q", f)
}
