package models

// Requests for the HTTP endpoints. Defined in domain so handlers and tests share them.

type SubmitPredictionRequest struct {
	PriceDirection  string `json:"priceDirection" validate:"required,direction"`
	VolatilityGuess string `json:"volatilityGuess" validate:"required,volatility"`
}

type UpdateProfileRequest struct {
	Username string `json:"username" validate:"max=64"`
}

type ListPredictionsRequest struct {
	Page     int `query:"page" json:"page" default:"1" validate:"gte=1"`
	PageSize int `query:"pageSize" json:"pageSize" default:"10" validate:"gte=1,lte=100"`
}

type PriceHistoryRequest struct {
	Days int `query:"days" json:"days" default:"7" validate:"gte=1,lte=30"`
}

type LeaderboardRequest struct {
	Limit int `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=100"`
}

type PredictionPage struct {
	Items    []Prediction `json:"items"`
	Page     int          `json:"page"`
	PageSize int          `json:"pageSize"`
	Total    int64        `json:"total"`
}
