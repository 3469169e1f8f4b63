package audit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(id string) Record {
	return Record{ID: id, Action: ActionSyncActivity}
}

func TestNewRecord(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	r := NewRecord("Reviewed notes", map[string]any{"tasks_completed": 2}, now)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, ActionSyncActivity, r.Action)
	assert.Equal(t, "Bubba", r.Actor)
	assert.Equal(t, "agent", r.ActorRole)
	assert.Equal(t, "Reviewed notes", r.Details)
	assert.Equal(t, 2, r.Metadata["tasks_completed"])
	assert.Equal(t, now, r.CreatedAt.Time)

	other := NewRecord("x", nil, now)
	assert.NotEqual(t, r.ID, other.ID)
	assert.NotNil(t, other.Metadata)
}

func TestAppend_NewestFirst(t *testing.T) {
	var log []Record
	log = Append(log, rec("1"))
	log = Append(log, rec("2"))
	log = Append(log, rec("3"))

	require.Len(t, log, 3)
	assert.Equal(t, "3", log[0].ID)
	assert.Equal(t, "1", log[2].ID)
}

func TestAppend_Bounded(t *testing.T) {
	var log []Record
	for i := 0; i < 250; i++ {
		log = Append(log, rec(fmt.Sprint(i)))
		require.LessOrEqual(t, len(log), MaxRecords)
		require.Equal(t, fmt.Sprint(i), log[0].ID)
	}

	require.Len(t, log, MaxRecords)
	assert.Equal(t, "249", log[0].ID)
	assert.Equal(t, "150", log[MaxRecords-1].ID)
}

func TestAppend_DoesNotMutateInput(t *testing.T) {
	original := []Record{rec("a"), rec("b")}
	_ = Append(original, rec("c"))
	assert.Equal(t, "a", original[0].ID)
	assert.Equal(t, "b", original[1].ID)
}

func TestFileLog_AppendPersists(t *testing.T) {
	ctx := context.Background()
	l := NewFileLog(filepath.Join(t.TempDir(), "audit_log.json"))

	for i := 0; i < 105; i++ {
		require.NoError(t, l.Append(ctx, rec(fmt.Sprint(i))))
	}

	records := l.Records(ctx)
	require.Len(t, records, MaxRecords)
	assert.Equal(t, "104", records[0].ID)
	assert.Equal(t, "5", records[MaxRecords-1].ID)
}

func TestFileLog_CorruptFileStartsFresh(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "audit_log.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	l := NewFileLog(path)
	assert.Empty(t, l.Records(ctx))

	require.NoError(t, l.Append(ctx, rec("first")))
	records := l.Records(ctx)
	require.Len(t, records, 1)
	assert.Equal(t, "first", records[0].ID)
}

func TestFileLog_LoadLegacyFormat(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "audit_log.json")
	raw := `[
		{"id": "b", "action": "sync_activity", "actor": "Bubba", "actor_role": "agent", "details": "later", "metadata": {}, "created_at": "2026-10-16T10:00:00.654321"},
		{"id": "a", "action": "sync_activity", "actor": "Bubba", "actor_role": "agent", "details": "earlier", "metadata": {}, "created_at": "2026-10-16T09:30:00"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	l := NewFileLog(path)
	require.Len(t, l.Records(ctx), 2)

	require.NoError(t, l.Append(ctx, NewRecord("new", nil, time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC))))

	records := l.Records(ctx)
	require.Len(t, records, 3)
	assert.Equal(t, "new", records[0].Details)
	assert.Equal(t, "b", records[1].ID)
	assert.Equal(t, "a", records[2].ID)
	assert.Equal(t, 30, records[2].CreatedAt.Minute())
}
