package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/cache"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/metrics"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/models"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/timeutil"
)

// StationSummary is the per-station slice of the floor summary.
type StationSummary struct {
	Station models.Station            `json:"station"`
	States  map[models.StageState]int `json:"states"`
	Reworks int                       `json:"reworks"`
	WIP     int                       `json:"wip"` // orders queued or in progress
}

// Summary is the factory-floor dashboard payload.
type Summary struct {
	Time            time.Time        `json:"time"`
	OrdersTotal     int              `json:"orders_total"`
	OrdersBlocked   int              `json:"orders_blocked"`
	OrdersCompleted int              `json:"orders_completed"`
	OrdersRD        int              `json:"orders_rd"`
	OpenCRs         int              `json:"open_change_requests"`
	Stations        []StationSummary `json:"stations"`
}

// MetricsCollector periodically folds all orders into the floor summary
// and pushes the result into the Prometheus gauges and the Redis cache.
type MetricsCollector struct {
	store           OrderStore
	collectInterval time.Duration
	stopChan        chan struct{}
	wg              sync.WaitGroup
}

func NewMetricsCollector(store OrderStore) *MetricsCollector {
	return &MetricsCollector{
		store:           store,
		collectInterval: 30 * time.Second,
		stopChan:        make(chan struct{}),
	}
}

// Start begins the collection loop.
func (c *MetricsCollector) Start() {
	log.Println("[MetricsCollector] Starting metrics collector...")

	// Collect immediately on start
	c.collect()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.collectInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopChan:
				log.Println("[MetricsCollector] Stopping metrics collector...")
				return
			}
		}
	}()
}

// Stop stops the collection loop.
func (c *MetricsCollector) Stop() {
	close(c.stopChan)
	c.wg.Wait()
}

func (c *MetricsCollector) collect() {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	summary, err := c.Summarize(ctx)
	if err != nil {
		log.Printf("[MetricsCollector] Error building summary: %v", err)
		return
	}

	metrics.OrdersTotal.Set(float64(summary.OrdersTotal))
	metrics.OrdersBlocked.Set(float64(summary.OrdersBlocked))
	metrics.OrdersCompleted.Set(float64(summary.OrdersCompleted))
	for _, st := range summary.Stations {
		for state, n := range st.States {
			metrics.StationStageOrders.WithLabelValues(string(st.Station), string(state)).Set(float64(n))
		}
		metrics.StationReworks.WithLabelValues(string(st.Station)).Set(float64(st.Reworks))
	}

	if data, err := json.Marshal(summary); err == nil {
		cache.CacheSummary(ctx, data)
	}
}

// Summarize folds every non-draft order into the floor summary.
func (c *MetricsCollector) Summarize(ctx context.Context) (*Summary, error) {
	if data, ok := cache.GetCached(ctx, cache.SummaryKey); ok {
		var s Summary
		if err := json.Unmarshal(data, &s); err == nil {
			return &s, nil
		}
	}

	orders, err := c.store.List(ctx, false)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Time: timeutil.Now()}
	states := map[models.Station]map[models.StageState]int{}
	reworks := map[models.Station]int{}
	for _, st := range models.Stations {
		states[st] = map[models.StageState]int{}
	}

	for _, o := range orders {
		summary.OrdersTotal++
		if o.IsRD {
			summary.OrdersRD++
		}

		blocked := false
		completed := true
		for _, st := range models.Stations {
			state := o.Stages[st]
			states[st][state]++
			if state == models.StageBlocked {
				blocked = true
			}
			if state != models.StageCompleted {
				completed = false
			}
		}
		if blocked {
			summary.OrdersBlocked++
		}
		if completed {
			summary.OrdersCompleted++
		}

		for _, cycle := range o.Cycles {
			reworks[cycle.Station]++
		}
		for _, cr := range o.ChangeRequests {
			if cr.Status == models.CRStatusOpen {
				summary.OpenCRs++
			}
		}
	}

	for _, st := range models.Stations {
		summary.Stations = append(summary.Stations, StationSummary{
			Station: st,
			States:  states[st],
			Reworks: reworks[st],
			WIP:     states[st][models.StageQueued] + states[st][models.StageInProgress],
		})
	}

	return summary, nil
}
