// Seeds a handful of demo orders so the dashboard has something to show.
// Safe to run repeatedly: existing order ids are skipped.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/chat"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/database"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/models"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/repositories"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/services"
)

func main() {
	godotenv.Load()

	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbUser := getEnv("DB_USER", "postgres")
	dbPassword := getEnv("DB_PASSWORD", "postgres")
	dbName := getEnv("DB_NAME", "oms_db")

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		dbUser, dbPassword, dbHost, dbPort, dbName)

	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	ctx := context.Background()
	if err := database.NewMigrator(pool).RunMigrations(ctx); err != nil {
		log.Fatalf("Migrations failed: %v", err)
	}

	orders := services.NewOrderService(repositories.NewOrderRepository(pool))
	crs := services.NewChangeRequestService(orders, chat.NewHub())

	seeds := []models.CreateOrderRequest{
		{
			ID:     "PO-2024-001",
			Title:  "Backlit channel letters, storefront",
			Client: "Barista Nova",
			Due:    "2026-09-20",
			Fields: []models.Field{
				{Key: "size", Label: "Size", Value: "4200x600mm"},
				{Key: "face", Label: "Face", Value: "opal acrylic 3mm"},
			},
			Materials: []models.Field{
				{Key: "acm", Label: "ACM sheets", Value: "3"},
				{Key: "led", Label: "LED modules", Value: "120"},
			},
		},
		{
			ID:     "PO-2024-002",
			Title:  "Pylon sign refurbishment",
			Client: "Via Sport",
			Due:    "2026-10-05",
			Badges: []models.Badge{models.BadgeOpen, models.BadgeUrgent},
		},
		{
			ID:      "PO-2024-003",
			Title:   "Neon-flex logo prototype",
			Client:  "Internal",
			IsRD:    true,
			RDNotes: "Testing 24V neon-flex bend radius",
		},
		{
			ID:      "PO-2024-004",
			Title:   "Wayfinding totems (draft quote)",
			Client:  "Gallery M",
			IsDraft: true,
		},
	}

	created := 0
	for i := range seeds {
		// CreateOrder returns the existing order on a repeated id, so probe
		// first to keep the count honest on re-runs.
		if _, err := orders.GetOrder(ctx, seeds[i].ID); err == nil {
			log.Printf("Skipping %s: already seeded", seeds[i].ID)
			continue
		}
		if _, err := orders.CreateOrder(ctx, &seeds[i]); err != nil {
			log.Printf("Skipping %s: %v", seeds[i].ID, err)
			continue
		}
		created++
	}

	// Put the first order partway through the floor.
	if created > 0 {
		steps := []struct {
			station models.Station
			next    models.StageState
		}{
			{models.StationCAD, models.StageInProgress},
			{models.StationCAD, models.StageCompleted},
			{models.StationCNC, models.StageQueued},
			{models.StationCNC, models.StageInProgress},
		}
		for _, s := range steps {
			if _, err := crs.ApplyStage(ctx, "PO-2024-001", "seed", s.station, s.next, ""); err != nil {
				log.Printf("Stage step failed: %v", err)
			}
		}
	}

	fmt.Printf("Seeded %d orders.\n", created)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
