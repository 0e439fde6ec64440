package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/cache"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/metrics"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/models"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/repositories"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/timeutil"
)

// OrderStore is the persistence surface the order services need. The
// pgx-backed repository implements it; tests use an in-memory fake.
type OrderStore interface {
	Get(ctx context.Context, id string) (*models.Order, error)
	Save(ctx context.Context, o *models.Order) error
	List(ctx context.Context, includeDrafts bool) ([]*models.Order, error)
	Exists(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// OrderService owns the order aggregate: creation, branches, commits and
// rollback. All writes to one order are serialized through a per-order
// lock, so a read-modify-write never interleaves with another.
type OrderService struct {
	Store OrderStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewOrderService(store OrderStore) *OrderService {
	return &OrderService{
		Store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

// lockOrder acquires the per-order mutex and returns the unlock func.
func (s *OrderService) lockOrder(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// CreateOrder seeds a new order: the uploaded file becomes revision one,
// the default branch "main" starts with a single init commit, and the
// working snapshot starts from the request.
func (s *OrderService) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error) {
	if req.ID == "" {
		return nil, errors.New("order id is required")
	}
	if req.Title == "" {
		return nil, errors.New("order title is required")
	}

	// Creating an id that already exists is a no-op returning the
	// existing order, so a retried upload never clobbers history.
	exists, err := s.Store.Exists(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check order %s: %w", req.ID, err)
	}
	if exists {
		return s.Store.Get(ctx, req.ID)
	}

	now := timeutil.Now()

	seed := models.Revision{
		ID:        uuid.NewString(),
		CreatedAt: now,
		CreatedBy: "system",
		Message:   "Initial upload",
		File:      req.File,
	}

	init := models.Commit{
		ID:      "init",
		TS:      now,
		Author:  "system",
		Message: "Order created",
	}

	order := &models.Order{
		ID:      req.ID,
		Title:   req.Title,
		Client:  req.Client,
		Due:     req.Due,
		IsRD:    req.IsRD,
		RDNotes: req.RDNotes,
		IsDraft: req.IsDraft,
		File:    &seed.File,

		Badges:    append([]models.Badge(nil), req.Badges...),
		Fields:    append([]models.Field(nil), req.Fields...),
		Materials: append([]models.Field(nil), req.Materials...),
		Progress:  map[models.Station]int{},
		Stages:    req.Stages.Normalize(),
		Cycles:    []models.StageCycle{},

		DefaultBranch: "main",
		Branches: []models.Branch{{
			Name:      "main",
			Head:      init.ID,
			Commits:   []models.Commit{init},
			IsDefault: true,
		}},
		ChangeRequests:    []models.ChangeRequest{},
		Revisions:         []models.Revision{seed},
		DefaultRevisionID: seed.ID,

		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, st := range models.Stations {
		order.Progress[st] = 0
	}
	for st, v := range req.Progress {
		order.Progress[st] = v
	}

	if len(order.Badges) == 0 {
		order.Badges = []models.Badge{models.BadgeOpen}
	}
	if order.IsDraft && !order.HasBadge(models.BadgeDraft) {
		order.Badges = append(order.Badges, models.BadgeDraft)
	}
	if order.IsRD && !order.HasBadge(models.BadgeRD) {
		order.Badges = append(order.Badges, models.BadgeRD)
	}
	order.Normalize()

	if err := s.Store.Save(ctx, order); err != nil {
		return nil, err
	}
	metrics.OrdersCreated.Inc()
	cache.InvalidateOrder(ctx, order.ID)

	log.Printf("[Orders] Created order %s (%s)", order.ID, order.Title)
	return order, nil
}

// GetOrder loads an order, serving from cache when possible.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	if data, ok := cache.GetCachedOrder(ctx, id); ok {
		var order models.Order
		if err := json.Unmarshal(data, &order); err == nil {
			order.Normalize()
			return &order, nil
		}
	}

	order, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(order); err == nil {
		cache.CacheOrder(ctx, id, data)
	}
	return order, nil
}

// ListOrders returns all orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, includeDrafts bool) ([]*models.Order, error) {
	return s.Store.List(ctx, includeDrafts)
}

// DeleteOrder removes an order entirely. Admin only, enforced upstream.
func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	unlock := s.lockOrder(id)
	defer unlock()

	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}
	cache.InvalidateOrder(ctx, id)
	log.Printf("[Orders] Deleted order %s", id)
	return nil
}

// CreateBranch copies the source branch's commit list under a new name.
// Unknown source or duplicate name is a no-op.
func (s *OrderService) CreateBranch(ctx context.Context, orderID, name, from string) (*models.Order, error) {
	unlock := s.lockOrder(orderID)
	defer unlock()

	order, err := s.Store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if name == "" || order.FindBranch(name) != nil {
		return order, nil
	}
	if from == "" {
		from = order.DefaultBranch
	}
	src := order.FindBranch(from)
	if src == nil {
		return order, nil
	}

	order.Branches = append(order.Branches, models.Branch{
		Name:    name,
		Head:    src.Head,
		Commits: append([]models.Commit(nil), src.Commits...),
	})

	return s.save(ctx, order)
}

// SetDefaultBranch marks the named branch default and unmarks the rest.
func (s *OrderService) SetDefaultBranch(ctx context.Context, orderID, name string) (*models.Order, error) {
	unlock := s.lockOrder(orderID)
	defer unlock()

	order, err := s.Store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	for i := range order.Branches {
		order.Branches[i].IsDefault = order.Branches[i].Name == name
	}
	order.DefaultBranch = name

	return s.save(ctx, order)
}

// DeleteBranch removes a branch. The default branch cannot be deleted.
func (s *OrderService) DeleteBranch(ctx context.Context, orderID, name string) (*models.Order, error) {
	unlock := s.lockOrder(orderID)
	defer unlock()

	order, err := s.Store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if name == order.DefaultBranch {
		return order, nil
	}

	kept := order.Branches[:0]
	for _, b := range order.Branches {
		if b.Name != name {
			kept = append(kept, b)
		}
	}
	order.Branches = kept

	return s.save(ctx, order)
}

// Commit records a direct commit on the named branch and folds its
// changes into the working snapshot.
func (s *OrderService) Commit(ctx context.Context, orderID, branchName, author string, req *models.CommitRequest) (*models.Order, error) {
	unlock := s.lockOrder(orderID)
	defer unlock()

	order, err := s.Store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !s.commitToBranch(order, branchName, models.Commit{
		Author:  author,
		Station: req.Station,
		Message: req.Message,
		Changes: req.Changes,
	}, "direct") {
		return order, nil
	}

	return s.save(ctx, order)
}

// commitToBranch prepends a commit to the named branch, advances head and
// applies the changes to the snapshot. The snapshot tracks every commit,
// whichever branch it lands on. Returns false when the branch is unknown.
func (s *OrderService) commitToBranch(order *models.Order, branchName string, c models.Commit, source string) bool {
	br := order.FindBranch(branchName)
	if br == nil {
		return false
	}

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.TS.IsZero() {
		c.TS = timeutil.Now()
	}

	br.Commits = append([]models.Commit{c}, br.Commits...)
	br.Head = c.ID

	c.Changes.Apply(order)
	metrics.CommitsTotal.WithLabelValues(source).Inc()
	return true
}

// Rollback truncates the branch at the target commit, then rebuilds the
// snapshot by replaying the kept commits oldest to newest. Badges, fields,
// materials and the active file reset to the seed state first; station
// progress, stages and rework cycles carry over untouched.
func (s *OrderService) Rollback(ctx context.Context, orderID, branchName, commitID string) (*models.Order, error) {
	unlock := s.lockOrder(orderID)
	defer unlock()

	order, err := s.Store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	br := order.FindBranch(branchName)
	if br == nil {
		return order, nil
	}
	idx := br.FindCommit(commitID)
	if idx < 0 {
		return order, nil
	}

	br.Commits = br.Commits[idx:]
	br.Head = br.Commits[0].ID

	// The snapshot rebuilds from whichever branch is rolled back, mirroring
	// how commits on any branch reach the snapshot.
	order.Badges = []models.Badge{}
	order.Fields = []models.Field{}
	order.Materials = []models.Field{}
	if seed := order.SeedRevision(); seed != nil {
		order.DefaultRevisionID = seed.ID
		file := seed.File
		order.File = &file
	} else {
		order.DefaultRevisionID = ""
		order.File = nil
	}

	// Commits are stored newest first; replay walks backwards.
	for i := len(br.Commits) - 1; i >= 0; i-- {
		br.Commits[i].Changes.Apply(order)
	}

	metrics.RollbacksTotal.Inc()
	log.Printf("[Orders] Rolled back %s/%s to %s", orderID, branchName, commitID)
	return s.save(ctx, order)
}

// AddBadge adds a badge if it is not already present.
func (s *OrderService) AddBadge(ctx context.Context, orderID string, badge models.Badge) (*models.Order, error) {
	unlock := s.lockOrder(orderID)
	defer unlock()

	order, err := s.Store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.HasBadge(badge) {
		order.Badges = append(order.Badges, badge)
		return s.save(ctx, order)
	}
	return order, nil
}

// RemoveBadge removes every occurrence of the badge.
func (s *OrderService) RemoveBadge(ctx context.Context, orderID string, badge models.Badge) (*models.Order, error) {
	unlock := s.lockOrder(orderID)
	defer unlock()

	order, err := s.Store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	kept := order.Badges[:0]
	for _, b := range order.Badges {
		if b != badge {
			kept = append(kept, b)
		}
	}
	order.Badges = kept

	return s.save(ctx, order)
}

// SetBadges replaces the badge list wholesale.
func (s *OrderService) SetBadges(ctx context.Context, orderID string, badges []models.Badge) (*models.Order, error) {
	unlock := s.lockOrder(orderID)
	defer unlock()

	order, err := s.Store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	order.Badges = append([]models.Badge(nil), badges...)
	return s.save(ctx, order)
}

// AddRedoFlag marks a station for redo with a reason. Unknown stations
// are ignored.
func (s *OrderService) AddRedoFlag(ctx context.Context, orderID string, station models.Station, reason models.ReworkReason) (*models.Order, error) {
	unlock := s.lockOrder(orderID)
	defer unlock()

	order, err := s.Store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !models.ValidStation(station) {
		return order, nil
	}

	present := false
	for _, st := range order.Redo {
		if st == station {
			present = true
			break
		}
	}
	if !present {
		order.Redo = append(order.Redo, station)
	}
	if order.RedoReasons == nil {
		order.RedoReasons = map[models.Station]models.ReworkReason{}
	}
	order.RedoReasons[station] = reason
	// A confirmed flag supersedes any pending selection
	order.RedoSelection = nil

	return s.save(ctx, order)
}

// ClearRedoFlag removes a station's redo flag and reason.
func (s *OrderService) ClearRedoFlag(ctx context.Context, orderID string, station models.Station) (*models.Order, error) {
	unlock := s.lockOrder(orderID)
	defer unlock()

	order, err := s.Store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	kept := order.Redo[:0]
	for _, st := range order.Redo {
		if st != station {
			kept = append(kept, st)
		}
	}
	order.Redo = kept
	delete(order.RedoReasons, station)

	return s.save(ctx, order)
}

// SetRedoSelection replaces the operator's redo station selection.
func (s *OrderService) SetRedoSelection(ctx context.Context, orderID string, stations []models.Station) (*models.Order, error) {
	unlock := s.lockOrder(orderID)
	defer unlock()

	order, err := s.Store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	order.RedoSelection = append([]models.Station(nil), stations...)
	return s.save(ctx, order)
}

// SnapshotAt rebuilds the working snapshot as it stood at the given
// commit on a branch: seed state, then every commit up to and including
// the target, oldest first. The stored order is not touched.
func (s *OrderService) SnapshotAt(ctx context.Context, orderID, branchName, commitID string) (*models.Order, error) {
	order, err := s.Store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	br := order.FindBranch(branchName)
	if br == nil {
		return nil, fmt.Errorf("branch %s not found on order %s", branchName, orderID)
	}
	idx := br.FindCommit(commitID)
	if idx < 0 {
		return nil, fmt.Errorf("commit %s not found on %s/%s", commitID, orderID, branchName)
	}

	at := &models.Order{
		ID:     order.ID,
		Title:  order.Title,
		Client: order.Client,
		Due:    order.Due,
	}
	at.Normalize()
	if seed := order.SeedRevision(); seed != nil {
		at.DefaultRevisionID = seed.ID
	}

	for i := len(br.Commits) - 1; i >= idx; i-- {
		br.Commits[i].Changes.Apply(at)
	}
	return at, nil
}

// save stamps UpdatedAt, persists and invalidates the cache.
func (s *OrderService) save(ctx context.Context, order *models.Order) (*models.Order, error) {
	order.UpdatedAt = timeutil.Now()
	if err := s.Store.Save(ctx, order); err != nil {
		return nil, err
	}
	cache.InvalidateOrder(ctx, order.ID)
	return order, nil
}

// IsNotFound reports whether the error means the order does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, repositories.ErrOrderNotFound)
}
