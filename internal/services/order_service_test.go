package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/models"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/services"
)

func newTestService(t *testing.T) (*services.OrderService, *memStore) {
	t.Helper()
	store := newMemStore()
	return services.NewOrderService(store), store
}

func seedOrder(t *testing.T, svc *services.OrderService, id string) *models.Order {
	t.Helper()
	order, err := svc.CreateOrder(context.Background(), &models.CreateOrderRequest{
		ID:     id,
		Title:  "Neon sign",
		Client: "Acme",
		Due:    "2026-09-15",
		File:   models.FileRef{ID: "f1", Name: "sign.cdr", Path: "orders/f1", Kind: "cdr"},
	})
	require.NoError(t, err)
	return order
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("seeds branch, commit and revision", func(t *testing.T) {
		svc, _ := newTestService(t)
		order := seedOrder(t, svc, "PO-1001")

		require.Len(t, order.Branches, 1)
		br := order.Branches[0]
		assert.Equal(t, "main", br.Name)
		assert.True(t, br.IsDefault)
		assert.Equal(t, "main", order.DefaultBranch)

		require.Len(t, br.Commits, 1)
		assert.Equal(t, "init", br.Commits[0].ID)
		assert.Equal(t, br.Commits[0].ID, br.Head)
		assert.Equal(t, "system", br.Commits[0].Author)

		require.Len(t, order.Revisions, 1)
		assert.Equal(t, order.Revisions[0].ID, order.DefaultRevisionID)
		assert.Equal(t, "sign.cdr", order.Revisions[0].File.Name)
		require.NotNil(t, order.File)
		assert.Equal(t, "sign.cdr", order.File.Name)

		assert.Equal(t, []models.Badge{models.BadgeOpen}, order.Badges)
		for _, st := range models.Stations {
			assert.Equal(t, 0, order.Progress[st])
			assert.Equal(t, models.StageNotStarted, order.Stages[st])
		}
	})

	t.Run("draft and rd flags add badges", func(t *testing.T) {
		svc, _ := newTestService(t)
		order, err := svc.CreateOrder(ctx, &models.CreateOrderRequest{
			ID:      "PO-1002",
			Title:   "Prototype letters",
			IsDraft: true,
			IsRD:    true,
		})
		require.NoError(t, err)
		assert.True(t, order.HasBadge(models.BadgeDraft))
		assert.True(t, order.HasBadge(models.BadgeRD))
	})

	t.Run("duplicate id returns the existing order untouched", func(t *testing.T) {
		svc, _ := newTestService(t)
		seedOrder(t, svc, "PO-1003")

		order, err := svc.CreateOrder(ctx, &models.CreateOrderRequest{ID: "PO-1003", Title: "Again"})
		require.NoError(t, err)
		assert.Equal(t, "Neon sign", order.Title)
		require.Len(t, order.FindBranch("main").Commits, 1)
	})

	t.Run("rejects missing id or title", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.CreateOrder(ctx, &models.CreateOrderRequest{Title: "No id"})
		require.Error(t, err)
		_, err = svc.CreateOrder(ctx, &models.CreateOrderRequest{ID: "PO-1004"})
		require.Error(t, err)
	})
}

func TestGetOrderNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.GetOrder(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, services.IsNotFound(err))
}

func TestCommit(t *testing.T) {
	ctx := context.Background()

	t.Run("prepends commit and advances head", func(t *testing.T) {
		svc, _ := newTestService(t)
		seedOrder(t, svc, "PO-2001")

		order, err := svc.Commit(ctx, "PO-2001", "main", "alice", &models.CommitRequest{
			Message: "Update title",
			Changes: models.ChangeSet{Title: models.StringPtr("Neon sign v2")},
		})
		require.NoError(t, err)

		br := order.FindBranch("main")
		require.Len(t, br.Commits, 2)
		assert.Equal(t, "Update title", br.Commits[0].Message)
		assert.Equal(t, br.Commits[0].ID, br.Head)
		assert.Equal(t, "init", br.Commits[1].ID)
		assert.Equal(t, "Neon sign v2", order.Title)
	})

	t.Run("unknown branch is a no-op", func(t *testing.T) {
		svc, _ := newTestService(t)
		seedOrder(t, svc, "PO-2002")

		order, err := svc.Commit(ctx, "PO-2002", "ghost", "alice", &models.CommitRequest{
			Message: "Lost",
			Changes: models.ChangeSet{Title: models.StringPtr("Never applied")},
		})
		require.NoError(t, err)
		assert.Equal(t, "Neon sign", order.Title)
		require.Len(t, order.FindBranch("main").Commits, 1)
	})

	t.Run("commits on any branch reach the snapshot", func(t *testing.T) {
		svc, _ := newTestService(t)
		seedOrder(t, svc, "PO-2003")

		_, err := svc.CreateBranch(ctx, "PO-2003", "experiment", "")
		require.NoError(t, err)

		order, err := svc.Commit(ctx, "PO-2003", "experiment", "bob", &models.CommitRequest{
			Message: "Try matte paint",
			Changes: models.ChangeSet{Client: models.StringPtr("Acme North")},
		})
		require.NoError(t, err)

		assert.Equal(t, "Acme North", order.Client)
		require.Len(t, order.FindBranch("main").Commits, 1)
		require.Len(t, order.FindBranch("experiment").Commits, 2)
	})
}

func TestBranches(t *testing.T) {
	ctx := context.Background()

	t.Run("create copies source commits", func(t *testing.T) {
		svc, _ := newTestService(t)
		seedOrder(t, svc, "PO-3001")
		_, err := svc.Commit(ctx, "PO-3001", "main", "alice", &models.CommitRequest{
			Message: "Add fields",
			Changes: models.ChangeSet{Fields: []models.Field{{Key: "color", Label: "Color", Value: "red"}}},
		})
		require.NoError(t, err)

		order, err := svc.CreateBranch(ctx, "PO-3001", "rework-qc", "")
		require.NoError(t, err)

		br := order.FindBranch("rework-qc")
		require.NotNil(t, br)
		assert.Len(t, br.Commits, 2)
		assert.Equal(t, order.FindBranch("main").Head, br.Head)
		assert.False(t, br.IsDefault)
	})

	t.Run("duplicate name and unknown source are no-ops", func(t *testing.T) {
		svc, _ := newTestService(t)
		seedOrder(t, svc, "PO-3002")

		order, err := svc.CreateBranch(ctx, "PO-3002", "main", "")
		require.NoError(t, err)
		assert.Len(t, order.Branches, 1)

		order, err = svc.CreateBranch(ctx, "PO-3002", "copy", "ghost")
		require.NoError(t, err)
		assert.Len(t, order.Branches, 1)
	})

	t.Run("set default flips flags", func(t *testing.T) {
		svc, _ := newTestService(t)
		seedOrder(t, svc, "PO-3003")
		_, err := svc.CreateBranch(ctx, "PO-3003", "alt", "")
		require.NoError(t, err)

		order, err := svc.SetDefaultBranch(ctx, "PO-3003", "alt")
		require.NoError(t, err)
		assert.Equal(t, "alt", order.DefaultBranch)
		assert.True(t, order.FindBranch("alt").IsDefault)
		assert.False(t, order.FindBranch("main").IsDefault)
	})

	t.Run("set default to an unknown name leaves no branch flagged", func(t *testing.T) {
		svc, _ := newTestService(t)
		seedOrder(t, svc, "PO-3006")
		_, err := svc.CreateBranch(ctx, "PO-3006", "alt", "")
		require.NoError(t, err)

		order, err := svc.SetDefaultBranch(ctx, "PO-3006", "ghost")
		require.NoError(t, err)
		assert.Equal(t, "ghost", order.DefaultBranch)
		for _, br := range order.Branches {
			assert.False(t, br.IsDefault)
		}
	})

	t.Run("cannot delete the default branch", func(t *testing.T) {
		svc, _ := newTestService(t)
		seedOrder(t, svc, "PO-3004")

		order, err := svc.DeleteBranch(ctx, "PO-3004", "main")
		require.NoError(t, err)
		assert.Len(t, order.Branches, 1)
	})

	t.Run("delete removes a non-default branch", func(t *testing.T) {
		svc, _ := newTestService(t)
		seedOrder(t, svc, "PO-3005")
		_, err := svc.CreateBranch(ctx, "PO-3005", "scrap", "")
		require.NoError(t, err)

		order, err := svc.DeleteBranch(ctx, "PO-3005", "scrap")
		require.NoError(t, err)
		assert.Nil(t, order.FindBranch("scrap"))
		assert.Len(t, order.Branches, 1)
	})
}

func TestRollback(t *testing.T) {
	ctx := context.Background()

	t.Run("truncates, resets and replays", func(t *testing.T) {
		svc, _ := newTestService(t)
		seedOrder(t, svc, "PO-4001")
		seedRevID := mustGet(t, svc, "PO-4001").DefaultRevisionID

		_, err := svc.Commit(ctx, "PO-4001", "main", "alice", &models.CommitRequest{
			Message: "Set fields",
			Changes: models.ChangeSet{
				Fields:   []models.Field{{Key: "size", Label: "Size", Value: "3x1m"}},
				Progress: map[models.Station]int{models.StationCAD: 40},
			},
		})
		require.NoError(t, err)
		mid := mustGet(t, svc, "PO-4001").FindBranch("main").Head

		_, err = svc.Commit(ctx, "PO-4001", "main", "alice", &models.CommitRequest{
			Message: "Badges and materials",
			Changes: models.ChangeSet{
				Badges:    []models.Badge{models.BadgeUrgent},
				Materials: []models.Field{{Key: "acm", Label: "ACM", Value: "2 sheets"}},
				Progress:  map[models.Station]int{models.StationCAD: 100},
			},
		})
		require.NoError(t, err)

		order, err := svc.Rollback(ctx, "PO-4001", "main", mid)
		require.NoError(t, err)

		br := order.FindBranch("main")
		require.Len(t, br.Commits, 2)
		assert.Equal(t, mid, br.Head)
		assert.Equal(t, mid, br.Commits[0].ID)

		// Replay reinstates the kept commit's effects and nothing after it.
		assert.Equal(t, []models.Field{{Key: "size", Label: "Size", Value: "3x1m"}}, order.Fields)
		assert.Equal(t, 40, order.Progress[models.StationCAD])
		assert.Empty(t, order.Badges)
		assert.Empty(t, order.Materials)
		assert.Equal(t, seedRevID, order.DefaultRevisionID)
	})

	t.Run("preserves progress, stages and cycles set outside the log", func(t *testing.T) {
		svc, store := newTestService(t)
		seedOrder(t, svc, "PO-4002")

		// Simulate accumulated floor state that never went through a commit.
		stored, err := store.Get(ctx, "PO-4002")
		require.NoError(t, err)
		stored.Progress[models.StationWelding] = 60
		stored.Stages[models.StationWelding] = models.StageInProgress
		stored.Cycles = []models.StageCycle{{Idx: 1, Station: models.StationWelding, Reason: models.ReworkReweld}}
		require.NoError(t, store.Save(ctx, stored))

		order, err := svc.Rollback(ctx, "PO-4002", "main", "init")
		require.NoError(t, err)

		assert.Equal(t, 60, order.Progress[models.StationWelding])
		assert.Equal(t, models.StageInProgress, order.Stages[models.StationWelding])
		require.Len(t, order.Cycles, 1)
	})

	t.Run("unknown branch or commit is a no-op", func(t *testing.T) {
		svc, _ := newTestService(t)
		seedOrder(t, svc, "PO-4003")

		order, err := svc.Rollback(ctx, "PO-4003", "ghost", "init")
		require.NoError(t, err)
		require.Len(t, order.FindBranch("main").Commits, 1)

		order, err = svc.Rollback(ctx, "PO-4003", "main", "ghost")
		require.NoError(t, err)
		require.Len(t, order.FindBranch("main").Commits, 1)
	})

	t.Run("non-default branch rollback rebuilds the snapshot too", func(t *testing.T) {
		svc, _ := newTestService(t)
		seedOrder(t, svc, "PO-4004")
		seedRevID := mustGet(t, svc, "PO-4004").DefaultRevisionID
		_, err := svc.CreateBranch(ctx, "PO-4004", "side", "")
		require.NoError(t, err)
		_, err = svc.Commit(ctx, "PO-4004", "side", "bob", &models.CommitRequest{
			Message: "Side change",
			Changes: models.ChangeSet{
				Badges: []models.Badge{models.BadgeUrgent},
				Fields: []models.Field{{Key: "depth", Label: "Depth", Value: "80mm"}},
			},
		})
		require.NoError(t, err)

		order, err := svc.Rollback(ctx, "PO-4004", "side", "init")
		require.NoError(t, err)
		require.Len(t, order.FindBranch("side").Commits, 1)

		// Rolling back a side branch replays that branch into the snapshot,
		// just as committing on a side branch reaches it.
		assert.Empty(t, order.Badges)
		assert.Empty(t, order.Fields)
		assert.Equal(t, seedRevID, order.DefaultRevisionID)
		// Main keeps its full log.
		require.Len(t, order.FindBranch("main").Commits, 1)
	})
}

func TestBadges(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	seedOrder(t, svc, "PO-5001")

	order, err := svc.AddBadge(ctx, "PO-5001", models.BadgeUrgent)
	require.NoError(t, err)
	assert.True(t, order.HasBadge(models.BadgeUrgent))

	// Adding again does not duplicate.
	order, err = svc.AddBadge(ctx, "PO-5001", models.BadgeUrgent)
	require.NoError(t, err)
	count := 0
	for _, b := range order.Badges {
		if b == models.BadgeUrgent {
			count++
		}
	}
	assert.Equal(t, 1, count)

	order, err = svc.RemoveBadge(ctx, "PO-5001", models.BadgeUrgent)
	require.NoError(t, err)
	assert.False(t, order.HasBadge(models.BadgeUrgent))

	order, err = svc.SetBadges(ctx, "PO-5001", []models.Badge{models.BadgeBlocked, models.BadgeLowStock})
	require.NoError(t, err)
	assert.Equal(t, []models.Badge{models.BadgeBlocked, models.BadgeLowStock}, order.Badges)
}

func TestRedoFlags(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	seedOrder(t, svc, "PO-6001")

	t.Run("invalid station is ignored", func(t *testing.T) {
		order, err := svc.AddRedoFlag(ctx, "PO-6001", "LASERS", models.ReworkCustom)
		require.NoError(t, err)
		assert.Empty(t, order.Redo)
	})

	t.Run("flag is deduplicated, reason updated", func(t *testing.T) {
		_, err := svc.AddRedoFlag(ctx, "PO-6001", models.StationPaint, models.ReworkRepaint)
		require.NoError(t, err)
		order, err := svc.AddRedoFlag(ctx, "PO-6001", models.StationPaint, models.ReworkCustom)
		require.NoError(t, err)

		assert.Equal(t, []models.Station{models.StationPaint}, order.Redo)
		assert.Equal(t, models.ReworkCustom, order.RedoReasons[models.StationPaint])
	})

	t.Run("clear removes flag and reason", func(t *testing.T) {
		order, err := svc.ClearRedoFlag(ctx, "PO-6001", models.StationPaint)
		require.NoError(t, err)
		assert.Empty(t, order.Redo)
		_, ok := order.RedoReasons[models.StationPaint]
		assert.False(t, ok)
	})

	t.Run("selection replaces wholesale", func(t *testing.T) {
		order, err := svc.SetRedoSelection(ctx, "PO-6001", []models.Station{models.StationCNC, models.StationQC})
		require.NoError(t, err)
		assert.Equal(t, []models.Station{models.StationCNC, models.StationQC}, order.RedoSelection)
	})

	t.Run("confirming a flag clears the pending selection", func(t *testing.T) {
		order, err := svc.AddRedoFlag(ctx, "PO-6001", models.StationCNC, models.ReworkCustom)
		require.NoError(t, err)
		assert.Contains(t, order.Redo, models.StationCNC)
		assert.Empty(t, order.RedoSelection)
	})
}

func TestSnapshotAt(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	seedOrder(t, svc, "PO-7001")

	_, err := svc.Commit(ctx, "PO-7001", "main", "alice", &models.CommitRequest{
		Message: "First pass",
		Changes: models.ChangeSet{Fields: []models.Field{{Key: "face", Label: "Face", Value: "acrylic"}}},
	})
	require.NoError(t, err)
	mid := mustGet(t, svc, "PO-7001").FindBranch("main").Head

	_, err = svc.Commit(ctx, "PO-7001", "main", "alice", &models.CommitRequest{
		Message: "Second pass",
		Changes: models.ChangeSet{Fields: []models.Field{{Key: "face", Label: "Face", Value: "aluminium"}}},
	})
	require.NoError(t, err)

	t.Run("rebuilds state at a commit", func(t *testing.T) {
		at, err := svc.SnapshotAt(ctx, "PO-7001", "main", mid)
		require.NoError(t, err)
		require.Len(t, at.Fields, 1)
		assert.Equal(t, "acrylic", at.Fields[0].Value)
	})

	t.Run("stored order is untouched", func(t *testing.T) {
		order := mustGet(t, svc, "PO-7001")
		require.Len(t, order.Fields, 1)
		assert.Equal(t, "aluminium", order.Fields[0].Value)
		require.Len(t, order.FindBranch("main").Commits, 3)
	})

	t.Run("unknown branch and commit error", func(t *testing.T) {
		_, err := svc.SnapshotAt(ctx, "PO-7001", "ghost", mid)
		require.Error(t, err)
		_, err = svc.SnapshotAt(ctx, "PO-7001", "main", "ghost")
		require.Error(t, err)
	})
}

func TestDeleteOrder(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	seedOrder(t, svc, "PO-8001")

	require.NoError(t, svc.DeleteOrder(ctx, "PO-8001"))
	_, err := svc.GetOrder(ctx, "PO-8001")
	assert.True(t, services.IsNotFound(err))

	err = svc.DeleteOrder(ctx, "PO-8001")
	assert.True(t, services.IsNotFound(err))
}

func mustGet(t *testing.T, svc *services.OrderService, id string) *models.Order {
	t.Helper()
	order, err := svc.GetOrder(context.Background(), id)
	require.NoError(t, err)
	return order
}
