package model

import "encoding/json"

type BuyerStats struct {
	Orders          int     `json:"orders"`
	TotalSpent      float64 `json:"total_spent"`
	TotalSpentLabel string  `json:"total_spent_label"`
	CartItems       int     `json:"cart_items"`
}

type RecentOrder struct {
	ID          any     `json:"id"`
	Status      string  `json:"status"`
	StatusClass string  `json:"status_class"`
	Total       float64 `json:"total"`
	TotalLabel  string  `json:"total_label"`
	PlacedOn    string  `json:"placed_on,omitempty"`
}

type BuyerDashboard struct {
	User         json.RawMessage `json:"user,omitempty"`
	Stats        BuyerStats      `json:"stats"`
	RecentOrders []RecentOrder   `json:"recent_orders"`
}

type SellerDashboard struct {
	User               json.RawMessage `json:"user,omitempty"`
	Analytics          json.RawMessage `json:"analytics"`
	TotalEarnings      float64         `json:"total_earnings"`
	TotalEarningsLabel string          `json:"total_earnings_label"`
	Period             int             `json:"period"`
}

type UserBreakdown struct {
	Buyers  int `json:"buyers"`
	Sellers int `json:"sellers"`
	Admins  int `json:"admins"`
}

type AdminDashboard struct {
	User          json.RawMessage `json:"user,omitempty"`
	UserBreakdown UserBreakdown   `json:"user_breakdown"`
	TotalUsers    int             `json:"total_users"`
	ActiveUsers   int             `json:"active_users"`
}
