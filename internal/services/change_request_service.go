package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/chat"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/metrics"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/models"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/timeutil"
)

// ChangeRequestService manages proposed changes and the stage actions
// built on top of them. Every snapshot mutation here goes through a
// change request and its merge commit; nothing writes the snapshot
// directly.
type ChangeRequestService struct {
	Orders *OrderService
	Hub    *chat.Hub
}

func NewChangeRequestService(orders *OrderService, hub *chat.Hub) *ChangeRequestService {
	return &ChangeRequestService{Orders: orders, Hub: hub}
}

// Open records a new change request on the order, newest first.
func (s *ChangeRequestService) Open(ctx context.Context, orderID, author string, req *models.OpenChangeRequestRequest) (*models.Order, error) {
	unlock := s.Orders.lockOrder(orderID)
	defer unlock()

	order, err := s.Orders.Store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// Change requests always target main, even when another branch is the
	// current default.
	cr := models.ChangeRequest{
		ID:           uuid.NewString(),
		Title:        req.Title,
		Author:       author,
		CreatedAt:    timeutil.Now(),
		Status:       models.CRStatusOpen,
		TargetBranch: "main",
		Message:      req.Message,
		Proposed:     req.Proposed,
	}
	order.ChangeRequests = append([]models.ChangeRequest{cr}, order.ChangeRequests...)

	metrics.ChangeRequestsOpened.Inc()
	return s.Orders.save(ctx, order)
}

// Approve merges an open change request: its proposal becomes a commit
// on the target branch and the request is stamped merged. Anything but
// an open request is a no-op.
func (s *ChangeRequestService) Approve(ctx context.Context, orderID, crID, approver string) (*models.Order, error) {
	unlock := s.Orders.lockOrder(orderID)
	defer unlock()

	order, err := s.Orders.Store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	order, merged := s.merge(order, crID, approver)
	if !merged {
		return order, nil
	}

	cr := order.FindChangeRequest(crID)
	s.Hub.PostSystemEvent(models.SystemMessage{
		Channel:    "workstations",
		Event:      models.EventCRMerged,
		Text:       fmt.Sprintf("%s approved \"%s\" on %s", approver, cr.Title, order.Title),
		OrderID:    order.ID,
		OrderTitle: order.Title,
	})

	return s.Orders.save(ctx, order)
}

// merge performs the approve without locking or saving, for callers that
// already hold the order lock. Returns whether anything changed.
func (s *ChangeRequestService) merge(order *models.Order, crID, approver string) (*models.Order, bool) {
	cr := order.FindChangeRequest(crID)
	if cr == nil || cr.Status != models.CRStatusOpen {
		return order, false
	}

	if !s.Orders.commitToBranch(order, cr.TargetBranch, models.Commit{
		Author:  approver,
		Message: fmt.Sprintf("Merge CR: %s", cr.Title),
		Changes: cr.Proposed,
	}, "merge") {
		return order, false
	}

	now := timeutil.Now()
	cr.Status = models.CRStatusMerged
	cr.MergedAt = &now
	cr.MergedBy = approver

	metrics.ChangeRequestsMerged.Inc()
	log.Printf("[ChangeRequests] Merged %s on order %s by %s", crID, order.ID, approver)
	return order, true
}

// Decline closes an open change request without applying it.
func (s *ChangeRequestService) Decline(ctx context.Context, orderID, crID string) (*models.Order, error) {
	unlock := s.Orders.lockOrder(orderID)
	defer unlock()

	order, err := s.Orders.Store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	cr := order.FindChangeRequest(crID)
	if cr == nil || cr.Status != models.CRStatusOpen {
		return order, nil
	}
	cr.Status = models.CRStatusClosed

	metrics.ChangeRequestsClosed.Inc()
	return s.Orders.save(ctx, order)
}

// ApplyStage moves one station to its next state. The transition table
// is checked here, at intent time; the resulting change request is
// opened and merged in one step so the commit log keeps the full trail.
func (s *ChangeRequestService) ApplyStage(ctx context.Context, orderID, actor string, station models.Station, next models.StageState, note string) (*models.Order, error) {
	unlock := s.Orders.lockOrder(orderID)
	defer unlock()

	order, err := s.Orders.Store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !models.ValidStation(station) {
		return order, nil
	}
	current := order.Stages[station]
	if !models.CanTransition(current, next) {
		return order, nil
	}

	order, merged := s.openAndMerge(order, actor, fmt.Sprintf("%s: %s", station, models.StageLabels[next]), note, models.ChangeSet{
		Stages: map[models.Station]models.StageState{station: next},
	})
	if !merged {
		return order, nil
	}

	if next == models.StageCompleted {
		s.Hub.PostSystemEvent(models.SystemMessage{
			Channel:    "workstations",
			Event:      models.EventStageCompleted,
			Text:       fmt.Sprintf("%s finished %s on %s", actor, station, order.Title),
			OrderID:    order.ID,
			OrderTitle: order.Title,
			Station:    station,
		})
	}

	return s.Orders.save(ctx, order)
}

// SendToRework puts a station back into rework with a reason and logs a
// numbered rework cycle. Only states the table allows into REWORK accept it.
func (s *ChangeRequestService) SendToRework(ctx context.Context, orderID, actor string, station models.Station, reason models.ReworkReason, note string) (*models.Order, error) {
	unlock := s.Orders.lockOrder(orderID)
	defer unlock()

	order, err := s.Orders.Store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !models.ValidStation(station) {
		return order, nil
	}
	if !models.CanTransition(order.Stages[station], models.StageRework) {
		return order, nil
	}

	cycle := models.StageCycle{
		Idx:     len(order.Cycles) + 1,
		Station: station,
		Reason:  reason,
		Note:    note,
		At:      timeutil.Now(),
		By:      actor,
	}

	order, merged := s.openAndMerge(order, actor, fmt.Sprintf("%s: rework (%s)", station, models.ReworkLabels[reason]), note, models.ChangeSet{
		Stages: map[models.Station]models.StageState{station: models.StageRework},
		Cycles: append(append([]models.StageCycle(nil), order.Cycles...), cycle),
	})
	if !merged {
		return order, nil
	}

	s.Hub.PostSystemEvent(models.SystemMessage{
		Channel:    "workstations",
		Event:      models.EventStageRework,
		Text:       fmt.Sprintf("%s sent %s back to rework on %s (%s)", actor, station, order.Title, models.ReworkLabels[reason]),
		OrderID:    order.ID,
		OrderTitle: order.Title,
		Station:    station,
	})

	return s.Orders.save(ctx, order)
}

// openAndMerge opens a change request for the proposal and merges it
// immediately, keeping stage actions on the same audited path as manual
// change requests. The caller holds the order lock.
func (s *ChangeRequestService) openAndMerge(order *models.Order, actor, title, message string, proposed models.ChangeSet) (*models.Order, bool) {
	cr := models.ChangeRequest{
		ID:           uuid.NewString(),
		Title:        title,
		Author:       actor,
		CreatedAt:    timeutil.Now(),
		Status:       models.CRStatusOpen,
		TargetBranch: "main",
		Message:      message,
		Proposed:     proposed,
	}
	order.ChangeRequests = append([]models.ChangeRequest{cr}, order.ChangeRequests...)
	metrics.ChangeRequestsOpened.Inc()

	return s.merge(order, cr.ID, actor)
}
