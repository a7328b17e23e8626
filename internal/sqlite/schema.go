// Package sqlite keeps tracker snapshots in a SQLite database. It is a
// filestore.Snapshotter: every save writes the full record set as a new
// snapshot and drops the previous one inside a single transaction.
package sqlite

// Schema DDL. Records belong to exactly one snapshot; position preserves
// the save order.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS snapshots (
    snapshot_id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS records (
    snapshot_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    kind TEXT NOT NULL,
    id INTEGER NOT NULL,
    summary TEXT NOT NULL,
    description TEXT NOT NULL,
    status TEXT NOT NULL,
    epic_id INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (snapshot_id, position),
    FOREIGN KEY (snapshot_id) REFERENCES snapshots(snapshot_id) ON DELETE CASCADE
);
`

const (
	tableSnapshots = "snapshots"
	tableRecords   = "records"
)

var recordColumns = []string{
	"snapshot_id", "position", "kind", "id", "summary", "description", "status", "epic_id",
}
