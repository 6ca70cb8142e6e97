package dto

import "time"

type StatsWindow struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type BookingStatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type BookingStatsResponse struct {
	Window StatsWindow          `json:"window"`
	Total  int64                `json:"total"`
	Counts []BookingStatusCount `json:"counts"`
}

type ScheduleOccupancyResponse struct {
	Window        StatsWindow `json:"window"`
	Schedules     int64       `json:"schedules"`
	TotalCapacity int64       `json:"total_capacity"`
	TotalBooked   int64       `json:"total_booked"`
	OccupancyRate float64     `json:"occupancy_rate"`
}

type CardUsageRow struct {
	CardType      string `json:"card_type"`
	Cards         int64  `json:"cards"`
	TotalSessions int64  `json:"total_sessions"`
	UsedSessions  int64  `json:"used_sessions"`
}

type CardUsageResponse struct {
	MemberID string         `json:"member_id"`
	Rows     []CardUsageRow `json:"rows"`
}
