package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auricmart/agent-api/internal/model"
)

func openTestSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	snap, err := OpenSnapshot(filepath.Join(t.TempDir(), "agent.db"))
	require.NoError(t, err)
	t.Cleanup(func() { snap.Close() })
	return snap
}

func TestSnapshotRequestsRoundTrip(t *testing.T) {
	snap := openTestSnapshot(t)
	ctx := context.Background()

	requests := []model.Request{
		{ID: "r1", ItemID: "i1", RequestType: model.RequestTypeBuy, Status: model.RequestStatusPending, UpdatedAt: 100},
		{ID: "r2", ItemID: "i2", RequestType: model.RequestTypeSell, Status: model.RequestStatusAccepted, UpdatedAt: 200},
	}
	require.NoError(t, snap.SaveRequests(ctx, "u1", requests))

	got, err := snap.LoadRequests(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Newest first.
	assert.Equal(t, "r2", got[0].ID)
	assert.Equal(t, model.RequestStatusAccepted, got[0].Status)

	// Another viewer sees nothing.
	other, err := snap.LoadRequests(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, other)

	// Save replaces, never merges.
	require.NoError(t, snap.SaveRequests(ctx, "u1", requests[:1]))
	got, err = snap.LoadRequests(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "r1", got[0].ID)
}

func TestSnapshotNotificationsRoundTrip(t *testing.T) {
	snap := openTestSnapshot(t)
	ctx := context.Background()

	list := []model.Notification{
		{ID: "n1", Title: "hello", Timestamp: 100, RecipientID: "u1"},
		{ID: "n2", Title: "world", Timestamp: 200, Read: true},
	}
	require.NoError(t, snap.SaveNotifications(ctx, "u1", list))

	got, err := snap.LoadNotifications(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "n2", got[0].ID)
	assert.True(t, got[0].Read)
	assert.Equal(t, "u1", got[1].RecipientID)
}

func TestSnapshotPendingOps(t *testing.T) {
	snap := openTestSnapshot(t)
	ctx := context.Background()

	require.NoError(t, snap.EnqueuePendingOp(ctx, PendingOp{
		ID: "op1", Kind: OpMarkRead, TargetID: "n1", CreatedAt: 100,
	}))
	require.NoError(t, snap.EnqueuePendingOp(ctx, PendingOp{
		ID: "op2", Kind: OpDeleteNotification, TargetID: "n2", CreatedAt: 200,
	}))

	count, err := snap.PendingOpCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Oldest first.
	ops, err := snap.PendingOps(ctx, 10)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, "op1", ops[0].ID)
	assert.Equal(t, OpMarkRead, ops[0].Kind)

	require.NoError(t, snap.BumpPendingOp(ctx, "op1"))
	ops, err = snap.PendingOps(ctx, 1)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, 1, ops[0].Attempts)

	require.NoError(t, snap.DeletePendingOp(ctx, "op1"))
	count, err = snap.PendingOpCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSnapshotSurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "agent.db")
	ctx := context.Background()

	snap, err := OpenSnapshot(dbPath)
	require.NoError(t, err)
	require.NoError(t, snap.SaveRequests(ctx, "u1", []model.Request{{ID: "r1", UpdatedAt: 1}}))
	require.NoError(t, snap.Close())

	snap, err = OpenSnapshot(dbPath)
	require.NoError(t, err)
	defer snap.Close()

	got, err := snap.LoadRequests(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "r1", got[0].ID)
}
