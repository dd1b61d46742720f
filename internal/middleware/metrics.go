package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics holds process-wide counters for requests and analyses.
type Metrics struct {
	requestsTotal      atomic.Uint64
	requestsInProgress atomic.Int64
	requestsSuccess    atomic.Uint64
	requestsFailed     atomic.Uint64

	analysesBasic      atomic.Uint64
	analysesAdvanced   atomic.Uint64
	analysesBlockchain atomic.Uint64
	analysesFailed     atomic.Uint64
	batchRows          atomic.Uint64
	chats              atomic.Uint64
	listings           atomic.Uint64
	purchases          atomic.Uint64

	startTime time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// IncrementAnalyses counts one completed analysis under its model name.
func (m *Metrics) IncrementAnalyses(model string) {
	switch model {
	case "advanced":
		m.analysesAdvanced.Add(1)
	case "blockchain":
		m.analysesBlockchain.Add(1)
	default:
		m.analysesBasic.Add(1)
	}
}

func (m *Metrics) IncrementAnalysesFailed() { m.analysesFailed.Add(1) }

func (m *Metrics) AddBatchRows(n int) {
	if n > 0 {
		m.batchRows.Add(uint64(n))
	}
}

func (m *Metrics) IncrementChats()     { m.chats.Add(1) }
func (m *Metrics) IncrementListings()  { m.listings.Add(1) }
func (m *Metrics) IncrementPurchases() { m.purchases.Add(1) }

// Snapshot returns current metrics
func (m *Metrics) Snapshot() map[string]any {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return map[string]any{
		"requests_total":       m.requestsTotal.Load(),
		"requests_in_progress": m.requestsInProgress.Load(),
		"requests_success":     m.requestsSuccess.Load(),
		"requests_failed":      m.requestsFailed.Load(),
		"analyses": map[string]any{
			"basic":      m.analysesBasic.Load(),
			"advanced":   m.analysesAdvanced.Load(),
			"blockchain": m.analysesBlockchain.Load(),
			"failed":     m.analysesFailed.Load(),
			"batch_rows": m.batchRows.Load(),
		},
		"chats_total":     m.chats.Load(),
		"listings_total":  m.listings.Load(),
		"purchases_total": m.purchases.Load(),
		"uptime_seconds":  time.Since(m.startTime).Seconds(),
		"memory": map[string]any{
			"alloc_bytes":       mem.Alloc,
			"total_alloc_bytes": mem.TotalAlloc,
			"sys_bytes":         mem.Sys,
			"num_gc":            mem.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// Middleware tracks request metrics
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.requestsTotal.Add(1)
		m.requestsInProgress.Add(1)
		defer m.requestsInProgress.Add(-1)

		wrapped := wrapWriter(w)
		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			m.requestsSuccess.Add(1)
		} else {
			m.requestsFailed.Add(1)
		}
	})
}

// Handler returns metrics as JSON
func (m *Metrics) Handler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(m.Snapshot())
}
