package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

// Line field keys.
const (
	keyID          = "id"
	keySummary     = "summary"
	keyDescription = "description"
	keyStatus      = "status"
	keySubtaskIDs  = "subtaskIds"
	keyParentEpic  = "parentEpicId"
)

const fieldSep = ", "

// Line is the legacy text encoding:
//
//	Epic{subtaskIds=[1, 2], id='1', summary='s', description='d', status=NEW}
//	Subtask{parentEpicId='1', id='2', summary='s', description='d', status=DONE}
//	Task{id='3', summary='s', description='d', status=IN_PROGRESS}
//
// Summaries and descriptions are written verbatim, so values containing
// ", " or a closing quote followed by the separator do not survive a round
// trip. An epic's subtaskIds are written for readers but ignored on decode.
type Line struct{}

// Encode renders rec as one line.
func (Line) Encode(rec types.Record) (string, error) {
	var b strings.Builder
	switch r := rec.(type) {
	case *types.Task:
		b.WriteString(types.KindTask.String())
		b.WriteByte('{')
	case *types.Epic:
		b.WriteString(types.KindEpic.String())
		b.WriteByte('{')
		b.WriteString(keySubtaskIDs)
		b.WriteString("=[")
		for i, id := range r.SubtaskIDs {
			if i > 0 {
				b.WriteString(fieldSep)
			}
			b.WriteString(strconv.Itoa(id))
		}
		b.WriteByte(']')
		b.WriteString(fieldSep)
	case *types.Subtask:
		b.WriteString(types.KindSubtask.String())
		b.WriteByte('{')
		writeQuoted(&b, keyParentEpic, strconv.Itoa(r.EpicID))
		b.WriteString(fieldSep)
	default:
		return "", fmt.Errorf("encode %T: %w", rec, types.ErrInvalidKind)
	}

	base := rec.Base()
	if !base.Status.Valid() {
		return "", fmt.Errorf("encode %s %d: %v: %w", rec.Kind(), base.ID, base.Status, types.ErrInvalidStatus)
	}
	writeQuoted(&b, keyID, strconv.Itoa(base.ID))
	b.WriteString(fieldSep)
	writeQuoted(&b, keySummary, base.Summary)
	b.WriteString(fieldSep)
	writeQuoted(&b, keyDescription, base.Description)
	b.WriteString(fieldSep)
	b.WriteString(keyStatus)
	b.WriteByte('=')
	b.WriteString(base.Status.String())
	b.WriteByte('}')
	return b.String(), nil
}

func writeQuoted(b *strings.Builder, key, value string) {
	b.WriteString(key)
	b.WriteString("='")
	b.WriteString(value)
	b.WriteByte('\'')
}

// Decode parses one line. The kind is the text before the first '{'.
// Fields absent from the line keep their defaults (id 0, empty text,
// status NEW); unknown keys and segments without '=' are ignored.
func (Line) Decode(line string) (types.Record, error) {
	open := strings.IndexByte(line, '{')
	if open < 0 {
		return nil, malformed(line, "missing '{'")
	}
	end := strings.LastIndexByte(line, '}')
	if end < open {
		return nil, malformed(line, "missing '}'")
	}

	var rec types.Record
	switch kind := line[:open]; kind {
	case types.KindTask.String():
		rec = types.NewTask("", "")
	case types.KindEpic.String():
		rec = types.NewEpic("", "")
	case types.KindSubtask.String():
		rec = types.NewSubtask("", "", 0)
	default:
		return nil, fmt.Errorf("%w: kind %q: %w", types.ErrMalformedRecord, kind, types.ErrInvalidKind)
	}

	base := rec.Base()
	for _, part := range strings.Split(line[open+1:end], fieldSep) {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		key = unquote(key)
		value = unquote(value)

		switch key {
		case keyID:
			id, err := strconv.Atoi(value)
			if err != nil {
				return nil, malformed(line, "id "+strconv.Quote(value))
			}
			base.ID = id
		case keySummary:
			base.Summary = value
		case keyDescription:
			base.Description = value
		case keyStatus:
			status, err := types.ParseStatus(value)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", types.ErrMalformedRecord, err)
			}
			base.Status = status
		case keyParentEpic:
			sub, isSub := rec.(*types.Subtask)
			if !isSub {
				continue
			}
			id, err := strconv.Atoi(value)
			if err != nil {
				return nil, malformed(line, "parentEpicId "+strconv.Quote(value))
			}
			sub.EpicID = id
		}
	}
	return rec, nil
}

// unquote trims whitespace and one pair of surrounding single quotes.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}
	return s
}
