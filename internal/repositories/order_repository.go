package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/models"
)

// ErrOrderNotFound is returned when an order id does not exist.
var ErrOrderNotFound = errors.New("order not found")

// OrderRepository persists each order aggregate as one JSONB document.
// The history (branches, commits, change requests, revisions) lives
// inside the document, so a read returns the whole aggregate and a
// write replaces it atomically.
type OrderRepository struct {
	DB *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{DB: db}
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*models.Order, error) {
	var doc []byte
	err := r.DB.QueryRow(ctx, `SELECT doc FROM orders WHERE id=$1`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load order %s: %w", id, err)
	}

	var order models.Order
	if err := json.Unmarshal(doc, &order); err != nil {
		return nil, fmt.Errorf("failed to decode order %s: %w", id, err)
	}
	order.Normalize()
	return &order, nil
}

func (r *OrderRepository) Save(ctx context.Context, o *models.Order) error {
	doc, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to encode order %s: %w", o.ID, err)
	}

	_, err = r.DB.Exec(ctx, `
		INSERT INTO orders (id, doc, is_draft, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id)
		DO UPDATE SET doc = $2, is_draft = $3, updated_at = $5
	`, o.ID, doc, o.IsDraft, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save order %s: %w", o.ID, err)
	}
	return nil
}

// List returns all orders, optionally including drafts, newest first.
func (r *OrderRepository) List(ctx context.Context, includeDrafts bool) ([]*models.Order, error) {
	query := `SELECT doc FROM orders`
	if !includeDrafts {
		query += ` WHERE is_draft = false`
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var order models.Order
		if err := json.Unmarshal(doc, &order); err != nil {
			return nil, fmt.Errorf("failed to decode order: %w", err)
		}
		order.Normalize()
		orders = append(orders, &order)
	}
	return orders, nil
}

func (r *OrderRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id=$1)`, id).Scan(&exists)
	return exists, err
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}
