package replay

import "timeherosim/internal/domain/game"

type Request struct {
	RunID string
	Limit int
	// FromMinute and ToMinute bound OccurredAt in sim minutes. Zero is open.
	FromMinute int
	ToMinute   int
}

type Totals struct {
	ByType         map[string]int `json:"by_type"`
	CropsHarvested int            `json:"crops_harvested"`
	GoldFromSales  float64        `json:"gold_from_sales"`
	GoldFromRoutes float64        `json:"gold_from_routes"`
	Victories      int            `json:"victories"`
	Defeats        int            `json:"defeats"`
	Withered       int            `json:"withered"`
	LastMinute     int            `json:"last_minute"`
}

type Response struct {
	Events []game.DomainEvent `json:"events"`
	Totals Totals             `json:"totals"`
}
