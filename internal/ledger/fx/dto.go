package fx

import "time"

// CreateEventRequest carries a new wallet movement from the form layer.
// Amount and Rate stay raw strings until the service parses them into exact
// decimals.
type CreateEventRequest struct {
	Kind        string    `json:"kind" validate:"required,oneof=LOAD SPEND"`
	Amount      string    `json:"amount" validate:"required"`
	Rate        string    `json:"rate" validate:"required"`
	CompanyName string    `json:"company_name" validate:"max=200"`
	Platform    string    `json:"platform" validate:"max=100"`
	OccurredAt  time.Time `json:"occurred_at" validate:"required"`
}

// WalletOverview is the ad-spend page payload.
type WalletOverview struct {
	Balance     string  `json:"balance"`
	TotalLoaded string  `json:"total_loaded"`
	TotalSpent  string  `json:"total_spent"`
	Events      []Event `json:"events"`
}
