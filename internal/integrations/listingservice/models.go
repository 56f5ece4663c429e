package listingservice

// Listing модель листинга из ListingService
// Ставки в центах; overstay_* поля переопределяют политику локации
type Listing struct {
	ID                  int64    `json:"id"`
	LocationID          int64    `json:"location_id"`
	Type                string   `json:"type"` // kitchen, storage, equipment, bundle
	HourlyRateCents     int64    `json:"hourly_rate_cents"`
	DailyRateCents      int64    `json:"daily_rate_cents"`
	MinDurationMinutes  int      `json:"min_duration_minutes"`
	OverstayGraceDays   *int     `json:"overstay_grace_days,omitempty"`
	OverstayPenaltyRate *float64 `json:"overstay_penalty_rate,omitempty"`
	OverstayMaxDays     *int     `json:"overstay_max_penalty_days,omitempty"`
	IsActive            bool     `json:"is_active"`
}

// Location модель локации из ListingService
type Location struct {
	ID                 int64  `json:"id"`
	ManagerID          int64  `json:"manager_id"`
	Timezone           string `json:"timezone"` // IANA, например "America/Chicago"
	ConnectedAccountID string `json:"connected_account_id"`
	ServiceFeeRate     float64 `json:"service_fee_rate"`
}

// ErrorResponse модель ошибки от ListingService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
