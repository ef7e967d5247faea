package dto

import "time"

// StructuredResponse provides a base structured API response
type StructuredResponse struct {
	Success   bool        `json:"success" example:"true"`
	Message   string      `json:"message" example:"Operation completed successfully"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp" example:"2026-10-17T12:01:05.123Z"`
}

// RealtimeStatsData is a snapshot of the realtime hub
type RealtimeStatsData struct {
	Clients int `json:"clients" example:"42"`
	Users   int `json:"users" example:"37"`
	Rooms   int `json:"rooms" example:"55"`
	// Only reported by the redis presence backend
	OnlineUsers *int64 `json:"onlineUsers,omitempty" example:"37"`
}

// NewStructuredResponse creates a standard structured API response
func NewStructuredResponse(data interface{}, message string) StructuredResponse {
	return StructuredResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}
