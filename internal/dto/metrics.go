package dto

import "time"

// SystemMetrics summarises service health for the stats endpoint.
type SystemMetrics struct {
	CacheHitRatio   float64   `json:"cacheHitRatio"`
	RequestsTotal   uint64    `json:"requestsTotal"`
	SolvesTotal     uint64    `json:"solvesTotal"`
	SolveFailures   uint64    `json:"solveFailures"`
	AverageAttempts float64   `json:"averageAttempts"`
	ActiveSessions  int       `json:"activeSessions"`
	Goroutines      int       `json:"goroutines"`
	GeneratedAt     time.Time `json:"generatedAt"`
}
