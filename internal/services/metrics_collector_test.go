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

func TestSummarize(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	orders := services.NewOrderService(store)
	crs := services.NewChangeRequestService(orders, chat.NewHub())

	seedOrder(t, orders, "PO-M001")
	seedOrder(t, orders, "PO-M002")

	// Drafts stay out of the floor summary.
	_, err := orders.CreateOrder(ctx, &models.CreateOrderRequest{ID: "PO-M003", Title: "Draft", IsDraft: true})
	require.NoError(t, err)

	// One order blocked at welding, one with a rework cycle and an open CR.
	_, err = crs.ApplyStage(ctx, "PO-M001", "op", models.StationWelding, models.StageBlocked, "")
	require.NoError(t, err)
	_, err = crs.ApplyStage(ctx, "PO-M002", "op", models.StationPaint, models.StageInProgress, "")
	require.NoError(t, err)
	_, err = crs.SendToRework(ctx, "PO-M002", "qc1", models.StationPaint, models.ReworkRepaint, "")
	require.NoError(t, err)
	_, err = crs.Open(ctx, "PO-M002", "op", &models.OpenChangeRequestRequest{Title: "Pending change"})
	require.NoError(t, err)

	collector := services.NewMetricsCollector(store)
	summary, err := collector.Summarize(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.OrdersTotal)
	assert.Equal(t, 1, summary.OrdersBlocked)
	assert.Equal(t, 0, summary.OrdersCompleted)
	assert.Equal(t, 1, summary.OpenCRs)

	byStation := map[models.Station]services.StationSummary{}
	for _, st := range summary.Stations {
		byStation[st.Station] = st
	}
	assert.Equal(t, 1, byStation[models.StationWelding].States[models.StageBlocked])
	assert.Equal(t, 1, byStation[models.StationPaint].States[models.StageRework])
	assert.Equal(t, 1, byStation[models.StationPaint].Reworks)
	assert.Equal(t, 0, byStation[models.StationPaint].WIP)
}
