package export

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/roach88/trustlab/internal/catalog"
	"github.com/roach88/trustlab/internal/session"
)

// Header returns the CSV column names. The aiSeen_ columns follow the
// catalog's framing order.
func Header(cat *catalog.Catalog) []string {
	cols := []string{
		"experimentId", "sessionId", "participantId",
		"questionId", "index", "phase",
		"aiRecommended", "framingUsed", "choice", "followedAI",
		"shownAt", "answeredAt", "responseTimeMs",
	}
	for _, key := range cat.FramingKeys() {
		cols = append(cols, "aiSeen_"+key)
	}
	return cols
}

// CSV renders one row per question record. Rows are joined by "\n" with no
// trailing newline.
func CSV(sess *session.Session, cat *catalog.Catalog) ([]byte, error) {
	if sess == nil {
		return nil, ErrNoSession
	}
	framings := cat.FramingKeys()
	split := cat.Experiment.PhaseSplitIndex

	var buf bytes.Buffer
	writeRow(&buf, Header(cat))
	for i := range sess.Questions {
		q := &sess.Questions[i]
		row := []string{
			sess.Meta.ExperimentID,
			sess.Meta.SessionID,
			str(sess.Meta.ParticipantID),
			q.ID,
			strconv.Itoa(i + 1),
			strconv.Itoa(session.Phase(i, split)),
			str(q.AIRecommended),
			str(q.FramingUsed),
			str(q.Choice),
			followed(q),
			stamp(q.ShownAt),
			stamp(q.AnsweredAt),
			millis(q.ResponseTimeMs),
		}
		for _, key := range framings {
			if q.Seen(key) {
				row = append(row, "1")
			} else {
				row = append(row, "0")
			}
		}
		buf.WriteByte('\n')
		writeRow(&buf, row)
	}
	return buf.Bytes(), nil
}

func writeRow(buf *bytes.Buffer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(Escape(f))
	}
}

// Escape quotes a field that contains a comma, double quote or newline,
// doubling embedded quotes. Other fields are written verbatim.
func Escape(s string) string {
	if !strings.ContainsAny(s, "\",\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func stamp(t *session.Timestamp) string {
	if t == nil {
		return ""
	}
	return t.String()
}

func millis(p *int64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatInt(*p, 10)
}

func followed(q *session.QuestionRecord) string {
	f, ok := q.Followed()
	if !ok {
		return ""
	}
	return strconv.FormatBool(f)
}
