package domain

// ============================================================
// Health API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// BookingMetrics is returned by GET /v1/admin/metrics.
type BookingMetrics struct {
	BookingsConfirmed float64 `json:"bookingsConfirmed"`
	BookingsFailed    float64 `json:"bookingsFailed"`
	SlotConflicts     float64 `json:"slotConflicts"`
	AssistantReplies  float64 `json:"assistantReplies"`
	AssistantFallback float64 `json:"assistantFallbacks"`
	CacheHitRate      float64 `json:"cacheHitRate"`
}

// SuccessResponse wraps a successful single-entity response.
type SuccessResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}
