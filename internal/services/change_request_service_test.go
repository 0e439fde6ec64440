package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/chat"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/models"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/services"
)

func newCRService(t *testing.T) (*services.ChangeRequestService, *services.OrderService) {
	t.Helper()
	orders, _ := newTestService(t)
	return services.NewChangeRequestService(orders, chat.NewHub()), orders
}

func TestOpenChangeRequest(t *testing.T) {
	ctx := context.Background()
	crs, orders := newCRService(t)
	seedOrder(t, orders, "PO-9001")

	order, err := crs.Open(ctx, "PO-9001", "alice", &models.OpenChangeRequestRequest{
		Title:    "Switch to matte paint",
		Message:  "Client asked for matte",
		Proposed: models.ChangeSet{Fields: []models.Field{{Key: "finish", Label: "Finish", Value: "matte"}}},
	})
	require.NoError(t, err)

	require.Len(t, order.ChangeRequests, 1)
	cr := order.ChangeRequests[0]
	assert.Equal(t, models.CRStatusOpen, cr.Status)
	assert.Equal(t, "alice", cr.Author)
	assert.Equal(t, "main", cr.TargetBranch)
	assert.NotEmpty(t, cr.ID)

	// Nothing applied yet.
	assert.Empty(t, order.Fields)
	require.Len(t, order.FindBranch("main").Commits, 1)

	// Newest first.
	order, err = crs.Open(ctx, "PO-9001", "bob", &models.OpenChangeRequestRequest{Title: "Second"})
	require.NoError(t, err)
	assert.Equal(t, "Second", order.ChangeRequests[0].Title)

	// The target stays main even after the default branch moves.
	_, err = orders.CreateBranch(ctx, "PO-9001", "alt", "")
	require.NoError(t, err)
	_, err = orders.SetDefaultBranch(ctx, "PO-9001", "alt")
	require.NoError(t, err)
	order, err = crs.Open(ctx, "PO-9001", "bob", &models.OpenChangeRequestRequest{Title: "Third"})
	require.NoError(t, err)
	assert.Equal(t, "main", order.ChangeRequests[0].TargetBranch)
}

func TestApproveChangeRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("merge applies the proposal as a commit", func(t *testing.T) {
		crs, orders := newCRService(t)
		seedOrder(t, orders, "PO-9002")

		order, err := crs.Open(ctx, "PO-9002", "alice", &models.OpenChangeRequestRequest{
			Title:    "Bump CAD progress",
			Proposed: models.ChangeSet{Progress: map[models.Station]int{models.StationCAD: 75}},
		})
		require.NoError(t, err)
		crID := order.ChangeRequests[0].ID

		order, err = crs.Approve(ctx, "PO-9002", crID, "admin")
		require.NoError(t, err)

		cr := order.FindChangeRequest(crID)
		assert.Equal(t, models.CRStatusMerged, cr.Status)
		assert.Equal(t, "admin", cr.MergedBy)
		require.NotNil(t, cr.MergedAt)

		br := order.FindBranch("main")
		require.Len(t, br.Commits, 2)
		assert.Equal(t, "Merge CR: Bump CAD progress", br.Commits[0].Message)
		assert.Equal(t, "admin", br.Commits[0].Author)
		assert.Equal(t, br.Commits[0].ID, br.Head)
		assert.Equal(t, 75, order.Progress[models.StationCAD])
	})

	t.Run("re-approving a merged request is a no-op", func(t *testing.T) {
		crs, orders := newCRService(t)
		seedOrder(t, orders, "PO-9003")

		order, err := crs.Open(ctx, "PO-9003", "alice", &models.OpenChangeRequestRequest{Title: "Once"})
		require.NoError(t, err)
		crID := order.ChangeRequests[0].ID

		_, err = crs.Approve(ctx, "PO-9003", crID, "admin")
		require.NoError(t, err)
		order, err = crs.Approve(ctx, "PO-9003", crID, "admin")
		require.NoError(t, err)

		require.Len(t, order.FindBranch("main").Commits, 2)
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		crs, orders := newCRService(t)
		seedOrder(t, orders, "PO-9004")

		order, err := crs.Approve(ctx, "PO-9004", "ghost", "admin")
		require.NoError(t, err)
		require.Len(t, order.FindBranch("main").Commits, 1)
	})
}

func TestDeclineChangeRequest(t *testing.T) {
	ctx := context.Background()
	crs, orders := newCRService(t)
	seedOrder(t, orders, "PO-9005")

	order, err := crs.Open(ctx, "PO-9005", "alice", &models.OpenChangeRequestRequest{
		Title:    "Bad idea",
		Proposed: models.ChangeSet{Title: models.StringPtr("Wrong")},
	})
	require.NoError(t, err)
	crID := order.ChangeRequests[0].ID

	order, err = crs.Decline(ctx, "PO-9005", crID)
	require.NoError(t, err)
	assert.Equal(t, models.CRStatusClosed, order.FindChangeRequest(crID).Status)
	assert.Equal(t, "Neon sign", order.Title)

	// Closed is terminal: neither decline nor approve touches it again.
	order, err = crs.Approve(ctx, "PO-9005", crID, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.CRStatusClosed, order.FindChangeRequest(crID).Status)
	require.Len(t, order.FindBranch("main").Commits, 1)
}

func TestApplyStage(t *testing.T) {
	ctx := context.Background()

	t.Run("legal transition lands as a merged change request", func(t *testing.T) {
		crs, orders := newCRService(t)
		seedOrder(t, orders, "PO-9100")

		order, err := crs.ApplyStage(ctx, "PO-9100", "welder1", models.StationWelding, models.StageQueued, "material arrived")
		require.NoError(t, err)

		assert.Equal(t, models.StageQueued, order.Stages[models.StationWelding])
		require.Len(t, order.ChangeRequests, 1)
		assert.Equal(t, models.CRStatusMerged, order.ChangeRequests[0].Status)
		// The operator's note travels as the change request message.
		assert.Equal(t, "material arrived", order.ChangeRequests[0].Message)
		br := order.FindBranch("main")
		require.Len(t, br.Commits, 2)
		assert.Contains(t, br.Commits[0].Message, "WELDING")
	})

	t.Run("illegal transition is rejected before anything is written", func(t *testing.T) {
		crs, orders := newCRService(t)
		seedOrder(t, orders, "PO-9101")

		order, err := crs.ApplyStage(ctx, "PO-9101", "welder1", models.StationWelding, models.StageCompleted, "")
		require.NoError(t, err)

		assert.Equal(t, models.StageNotStarted, order.Stages[models.StationWelding])
		assert.Empty(t, order.ChangeRequests)
		require.Len(t, order.FindBranch("main").Commits, 1)
	})

	t.Run("completed is terminal", func(t *testing.T) {
		crs, orders := newCRService(t)
		seedOrder(t, orders, "PO-9102")

		for _, next := range []models.StageState{models.StageInProgress, models.StageCompleted} {
			_, err := crs.ApplyStage(ctx, "PO-9102", "op", models.StationQC, next, "")
			require.NoError(t, err)
		}
		order, err := crs.ApplyStage(ctx, "PO-9102", "op", models.StationQC, models.StageInProgress, "")
		require.NoError(t, err)
		assert.Equal(t, models.StageCompleted, order.Stages[models.StationQC])
	})

	t.Run("invalid station is ignored", func(t *testing.T) {
		crs, orders := newCRService(t)
		seedOrder(t, orders, "PO-9103")

		order, err := crs.ApplyStage(ctx, "PO-9103", "op", "LASERS", models.StageQueued, "")
		require.NoError(t, err)
		assert.Empty(t, order.ChangeRequests)
	})
}

func TestSendToRework(t *testing.T) {
	ctx := context.Background()

	t.Run("logs numbered cycles and sets the stage", func(t *testing.T) {
		crs, orders := newCRService(t)
		seedOrder(t, orders, "PO-9200")

		_, err := crs.ApplyStage(ctx, "PO-9200", "op", models.StationPaint, models.StageInProgress, "")
		require.NoError(t, err)

		order, err := crs.SendToRework(ctx, "PO-9200", "qc1", models.StationPaint, models.ReworkRepaint, "orange peel")
		require.NoError(t, err)

		assert.Equal(t, models.StageRework, order.Stages[models.StationPaint])
		require.Len(t, order.Cycles, 1)
		assert.Equal(t, 1, order.Cycles[0].Idx)
		assert.Equal(t, models.ReworkRepaint, order.Cycles[0].Reason)
		assert.Equal(t, "orange peel", order.Cycles[0].Note)
		assert.Equal(t, "qc1", order.Cycles[0].By)

		_, err = crs.ApplyStage(ctx, "PO-9200", "op", models.StationPaint, models.StageInProgress, "")
		require.NoError(t, err)
		order, err = crs.SendToRework(ctx, "PO-9200", "qc1", models.StationPaint, models.ReworkCustom, "")
		require.NoError(t, err)

		require.Len(t, order.Cycles, 2)
		assert.Equal(t, 2, order.Cycles[1].Idx)
	})

	t.Run("rework from an idle station is rejected", func(t *testing.T) {
		crs, orders := newCRService(t)
		seedOrder(t, orders, "PO-9201")

		order, err := crs.SendToRework(ctx, "PO-9201", "qc1", models.StationPaint, models.ReworkRepaint, "")
		require.NoError(t, err)
		assert.Empty(t, order.Cycles)
		assert.Equal(t, models.StageNotStarted, order.Stages[models.StationPaint])
	})
}
