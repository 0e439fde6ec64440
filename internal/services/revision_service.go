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

// RevisionService manages the chain of uploaded source documents. Adding
// a revision is the one operation that fails loudly on a missing order:
// a file was already uploaded, so silently dropping it would orphan it.
type RevisionService struct {
	Orders *OrderService
	Hub    *chat.Hub
}

func NewRevisionService(orders *OrderService, hub *chat.Hub) *RevisionService {
	return &RevisionService{Orders: orders, Hub: hub}
}

// AddRevision prepends a new revision, makes it the default and records
// the switch as a commit on the default branch.
func (s *RevisionService) AddRevision(ctx context.Context, orderID, actor, message string, file models.FileRef) (*models.Order, error) {
	unlock := s.Orders.lockOrder(orderID)
	defer unlock()

	order, err := s.Orders.Store.Get(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("cannot attach revision: %w", err)
	}

	rev := models.Revision{
		ID:        uuid.NewString(),
		CreatedAt: timeutil.Now(),
		CreatedBy: actor,
		Message:   message,
		File:      file,
	}
	if len(order.Revisions) > 0 {
		rev.ParentID = order.Revisions[0].ID
	}
	order.Revisions = append([]models.Revision{rev}, order.Revisions...)

	s.Orders.commitToBranch(order, order.DefaultBranch, models.Commit{
		Author:  actor,
		Message: fmt.Sprintf("New revision: %s", message),
		Changes: models.ChangeSet{DefaultRevisionID: models.StringPtr(rev.ID)},
	}, "revision")
	order.File = &file

	metrics.RevisionsAdded.Inc()
	s.Hub.PostSystemEvent(models.SystemMessage{
		Channel:    "workstations",
		Event:      models.EventRevisionAdded,
		Text:       fmt.Sprintf("%s uploaded a new revision of %s", actor, order.Title),
		OrderID:    order.ID,
		OrderTitle: order.Title,
	})

	log.Printf("[Revisions] Added revision %s to order %s", rev.ID, orderID)
	return s.Orders.save(ctx, order)
}

// SetDefaultRevision switches the active revision. Unknown revision ids
// are a no-op. The switch is itself a commit, so rollback can restore an
// earlier active revision.
func (s *RevisionService) SetDefaultRevision(ctx context.Context, orderID, actor, revisionID string) (*models.Order, error) {
	unlock := s.Orders.lockOrder(orderID)
	defer unlock()

	order, err := s.Orders.Store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	rev := order.FindRevision(revisionID)
	if rev == nil {
		return order, nil
	}

	s.Orders.commitToBranch(order, order.DefaultBranch, models.Commit{
		Author:  actor,
		Message: fmt.Sprintf("Switch revision to %s", rev.File.Name),
		Changes: models.ChangeSet{DefaultRevisionID: models.StringPtr(rev.ID)},
	}, "revision")
	file := rev.File
	order.File = &file

	return s.Orders.save(ctx, order)
}
