package taxyear

type BracketInput struct {
	Floor float64  `json:"floor"`
	Cap   *float64 `json:"cap"`
	Rate  float64  `json:"rate" binding:"gte=0,lte=1"`
}

type CreateYearRequest struct {
	Label         string         `json:"label" binding:"required"`
	EffectiveFrom string         `json:"effective_from" binding:"required"`
	EffectiveTo   *string        `json:"effective_to"`
	Brackets      []BracketInput `json:"brackets" binding:"required,dive"`
}

type BracketResponse struct {
	Position int     `json:"position"`
	Floor    string  `json:"floor"`
	Cap      *string `json:"cap"`
	Rate     string  `json:"rate"`
}

type YearResponse struct {
	ID            string            `json:"id"`
	Label         string            `json:"label"`
	EffectiveFrom string            `json:"effective_from"`
	EffectiveTo   *string           `json:"effective_to"`
	IsActive      bool              `json:"is_active"`
	Brackets      []BracketResponse `json:"brackets"`
}
