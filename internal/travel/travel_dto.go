package travel

type UpsertProfileRequest struct {
	UserID        string  `json:"user_id" binding:"required,uuid"`
	DistanceKm    float64 `json:"distance_km" binding:"gte=0"`
	TransportMode string  `json:"transport_mode" binding:"required"`
}

type ProfileResponse struct {
	UserID        string `json:"user_id"`
	DistanceKm    string `json:"distance_km"`
	TransportMode string `json:"transport_mode"`
}

type CreateTierRequest struct {
	TransportMode string  `json:"transport_mode" binding:"required"`
	MinKm         float64 `json:"min_km" binding:"gte=0"`
	MaxKm         float64 `json:"max_km" binding:"required"`
	MonthlyRate   float64 `json:"monthly_rate" binding:"gte=0"`
	EffectiveFrom string  `json:"effective_from" binding:"required"`
	EffectiveTo   *string `json:"effective_to"`
}

type TierResponse struct {
	ID            string  `json:"id"`
	TransportMode string  `json:"transport_mode"`
	MinKm         string  `json:"min_km"`
	MaxKm         string  `json:"max_km"`
	MonthlyRate   string  `json:"monthly_rate"`
	EffectiveFrom string  `json:"effective_from"`
	EffectiveTo   *string `json:"effective_to"`
	IsActive      bool    `json:"is_active"`
}
