package cafeadmin

import (
	"sync"
	"sync/atomic"
	"time"
)

// ConsoleMetrics tracks runtime metrics for the admin console
type ConsoleMetrics struct {
	mu sync.RWMutex

	// Session Store Metrics
	SessionsActive      int       `json:"sessions_active"`       // Current cached sessions
	SessionCapacity     int       `json:"session_capacity"`      // Max cached sessions
	SessionUsagePct     float64   `json:"session_usage_pct"`     // Usage percentage
	SessionsCreated     uint64    `json:"sessions_created"`      // Total sessions created
	SessionsCleared     uint64    `json:"sessions_cleared"`      // Total sessions cleared
	SessionsInvalidated uint64    `json:"sessions_invalidated"`  // Cleared by failed validation
	LastCapacityHit     time.Time `json:"last_capacity_hit"`     // Last time store was full

	// Request Metrics
	TotalRequests          uint64 `json:"total_requests"`          // Total API requests
	FailedRequests         uint64 `json:"failed_requests"`         // Failed API requests
	AuthenticationAttempts uint64 `json:"authentication_attempts"` // Total auth attempts
	AuthenticationFailures uint64 `json:"authentication_failures"` // Failed auth attempts

	// Backend Metrics
	QueriesExecuted  uint64  `json:"queries_executed"`      // Total backend reads
	QueriesSuccess   uint64  `json:"queries_success"`       // Successful reads
	QueriesFailed    uint64  `json:"queries_failed"`        // Failed reads
	MutationsApplied uint64  `json:"mutations_applied"`     // Successful writes
	MutationsFailed  uint64  `json:"mutations_failed"`      // Failed writes
	AverageQueryTime float64 `json:"average_query_time_ms"` // Average query time in ms

	// System Metrics
	StartTime time.Time `json:"start_time"` // Server start time
	Uptime    string    `json:"uptime"`     // Human readable uptime
}

// Global metrics instance
var (
	Metrics     *ConsoleMetrics
	metricsOnce sync.Once
)

// InitMetrics initializes the global metrics instance
func InitMetrics() {
	metricsOnce.Do(func() {
		Metrics = &ConsoleMetrics{
			StartTime: time.Now(),
		}
	})
}

// RecordSessionCreated increments session creation counter
func (m *ConsoleMetrics) RecordSessionCreated() {
	atomic.AddUint64(&m.SessionsCreated, 1)
}

// RecordSessionCleared increments session clear counter
func (m *ConsoleMetrics) RecordSessionCleared() {
	atomic.AddUint64(&m.SessionsCleared, 1)
}

// RecordSessionInvalidated counts sessions cleared by failed validation
func (m *ConsoleMetrics) RecordSessionInvalidated() {
	atomic.AddUint64(&m.SessionsInvalidated, 1)
	atomic.AddUint64(&m.SessionsCleared, 1)
}

// RecordCapacityHit records when the session store is full
func (m *ConsoleMetrics) RecordCapacityHit() {
	m.mu.Lock()
	m.LastCapacityHit = time.Now()
	m.mu.Unlock()
}

// RecordRequest increments total request counter
func (m *ConsoleMetrics) RecordRequest(success bool) {
	atomic.AddUint64(&m.TotalRequests, 1)
	if !success {
		atomic.AddUint64(&m.FailedRequests, 1)
	}
}

// RecordAuthentication records authentication attempt
func (m *ConsoleMetrics) RecordAuthentication(success bool) {
	atomic.AddUint64(&m.AuthenticationAttempts, 1)
	if !success {
		atomic.AddUint64(&m.AuthenticationFailures, 1)
	}
}

// RecordQuery records backend read execution
func (m *ConsoleMetrics) RecordQuery(success bool, durationMs float64) {
	atomic.AddUint64(&m.QueriesExecuted, 1)
	if success {
		atomic.AddUint64(&m.QueriesSuccess, 1)
	} else {
		atomic.AddUint64(&m.QueriesFailed, 1)
	}

	// Update average query time (simple moving average)
	m.mu.Lock()
	if m.AverageQueryTime == 0 {
		m.AverageQueryTime = durationMs
	} else {
		// Exponential moving average (alpha = 0.1)
		m.AverageQueryTime = 0.9*m.AverageQueryTime + 0.1*durationMs
	}
	m.mu.Unlock()
}

// RecordMutation records backend write execution
func (m *ConsoleMetrics) RecordMutation(success bool) {
	if success {
		atomic.AddUint64(&m.MutationsApplied, 1)
	} else {
		atomic.AddUint64(&m.MutationsFailed, 1)
	}
}

// MetricsSnapshot returns a snapshot of current metrics (thread-safe)
func (c *Console) MetricsSnapshot() ConsoleMetrics {
	if Metrics == nil {
		InitMetrics()
	}

	Metrics.mu.RLock()
	defer Metrics.mu.RUnlock()

	snapshot := *Metrics
	snapshot.Uptime = time.Since(Metrics.StartTime).String()

	if c != nil && c.Sessions != nil {
		snapshot.SessionsActive = c.Sessions.Count()
		snapshot.SessionCapacity = c.Sessions.Capacity()
		if snapshot.SessionCapacity > 0 {
			snapshot.SessionUsagePct = float64(snapshot.SessionsActive) / float64(snapshot.SessionCapacity) * 100
		}
	}

	return snapshot
}

// GetSessionStats returns session store statistics
func (c *Console) GetSessionStats() map[string]interface{} {
	if Metrics == nil {
		InitMetrics()
	}

	active := 0
	capacity := 0
	usingTTL := false
	if c != nil && c.Sessions != nil {
		active = c.Sessions.Count()
		capacity = c.Sessions.Capacity()
		usingTTL = c.Sessions.UsingTTL()
	}

	usagePct := 0.0
	if capacity > 0 {
		usagePct = float64(active) / float64(capacity) * 100
	}

	return map[string]interface{}{
		"sessions_active":      active,
		"session_capacity":     capacity,
		"usage_percentage":     usagePct,
		"ttl_store":            usingTTL,
		"sessions_created":     atomic.LoadUint64(&Metrics.SessionsCreated),
		"sessions_cleared":     atomic.LoadUint64(&Metrics.SessionsCleared),
		"sessions_invalidated": atomic.LoadUint64(&Metrics.SessionsInvalidated),
		"available_slots":      capacity - active,
	}
}

// IsSessionStoreNearCapacity returns true if usage is above threshold
func (c *Console) IsSessionStoreNearCapacity(thresholdPct float64) bool {
	if c == nil || c.Sessions == nil || c.Sessions.Capacity() == 0 {
		return false
	}

	usagePct := float64(c.Sessions.Count()) / float64(c.Sessions.Capacity()) * 100
	return usagePct >= thresholdPct
}

// GetHealthStatus returns overall health status
func (c *Console) GetHealthStatus() map[string]interface{} {
	metrics := c.MetricsSnapshot()

	// Determine health status
	status := "healthy"
	issues := []string{}

	// Check session store
	if metrics.SessionUsagePct >= 90 {
		status = "degraded"
		issues = append(issues, "session store near capacity")
	}

	// Check authentication failure rate
	if metrics.AuthenticationAttempts > 0 {
		failureRate := float64(metrics.AuthenticationFailures) / float64(metrics.AuthenticationAttempts) * 100
		if failureRate > 50 {
			status = "degraded"
			issues = append(issues, "high authentication failure rate")
		}
	}

	// Check query failure rate
	if metrics.QueriesExecuted > 0 {
		failureRate := float64(metrics.QueriesFailed) / float64(metrics.QueriesExecuted) * 100
		if failureRate > 10 {
			status = "unhealthy"
			issues = append(issues, "high query failure rate")
		}
	}

	// Check if backend is connected
	if c == nil || !c.Datastore.IsConnected() {
		status = "unhealthy"
		issues = append(issues, "backend not connected")
	}

	return map[string]interface{}{
		"status":     status,
		"issues":     issues,
		"uptime":     time.Since(metrics.StartTime).String(),
		"start_time": metrics.StartTime.Format(time.RFC3339),
	}
}
