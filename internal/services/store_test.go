package services_test

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/models"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/repositories"
)

// memStore is an in-memory OrderStore. Orders are kept as JSON blobs so
// every Get hands back an independent copy, the same way the pgx-backed
// repository does.
type memStore struct {
	mu     sync.Mutex
	orders map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{orders: make(map[string][]byte)}
}

func (m *memStore) Get(ctx context.Context, id string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, ok := m.orders[id]
	if !ok {
		return nil, repositories.ErrOrderNotFound
	}
	var order models.Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, err
	}
	order.Normalize()
	return &order, nil
}

func (m *memStore) Save(ctx context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, err := json.Marshal(o)
	if err != nil {
		return err
	}
	m.orders[o.ID] = raw
	return nil
}

func (m *memStore) List(ctx context.Context, includeDrafts bool) ([]*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.orders))
	for id := range m.orders {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []*models.Order
	for _, id := range ids {
		var order models.Order
		if err := json.Unmarshal(m.orders[id], &order); err != nil {
			return nil, err
		}
		if order.IsDraft && !includeDrafts {
			continue
		}
		order.Normalize()
		out = append(out, &order)
	}
	return out, nil
}

func (m *memStore) Exists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.orders[id]
	return ok, nil
}

func (m *memStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orders[id]; !ok {
		return repositories.ErrOrderNotFound
	}
	delete(m.orders, id)
	return nil
}
