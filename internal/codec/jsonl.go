package codec

import (
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

// jsonRecord is the on-disk shape of one JSONL line. Unknown fields are
// ignored on decode so newer writers stay readable.
type jsonRecord struct {
	Kind        string       `json:"kind"`
	ID          int          `json:"id"`
	Summary     string       `json:"summary"`
	Description string       `json:"description"`
	Status      types.Status `json:"status"`
	EpicID      int          `json:"epic_id,omitempty"`
	SubtaskIDs  []int        `json:"subtask_ids,omitempty"`
}

// JSONL encodes each record as a single JSON object.
type JSONL struct{}

// Encode renders rec as a JSON object on one line.
func (JSONL) Encode(rec types.Record) (string, error) {
	if rec == nil || !rec.Kind().Valid() {
		return "", fmt.Errorf("encode %T: %w", rec, types.ErrInvalidKind)
	}
	base := rec.Base()
	out := jsonRecord{
		Kind:        rec.Kind().String(),
		ID:          base.ID,
		Summary:     base.Summary,
		Description: base.Description,
		Status:      base.Status,
	}
	switch r := rec.(type) {
	case *types.Epic:
		out.SubtaskIDs = r.SubtaskIDs
	case *types.Subtask:
		out.EpicID = r.EpicID
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encoding %s %d: %w", out.Kind, out.ID, err)
	}
	return string(b), nil
}

// Decode parses one JSON object. Subtask ids of an epic are not restored;
// the store rebuilds membership from the subtasks themselves.
func (JSONL) Decode(line string) (types.Record, error) {
	var in jsonRecord
	if err := json.Unmarshal([]byte(line), &in); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrMalformedRecord, err)
	}
	kind, err := types.ParseKind(in.Kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrMalformedRecord, err)
	}

	rec := types.NewRecord(kind)
	base := rec.Base()
	base.ID = in.ID
	base.Summary = in.Summary
	base.Description = in.Description
	base.Status = in.Status
	if sub, ok := rec.(*types.Subtask); ok {
		sub.EpicID = in.EpicID
	}
	return rec, nil
}
