package revision

type RevisionLineInput struct {
	HeadCode string  `json:"head_code" binding:"required"`
	Amount   float64 `json:"amount"`
}

type CreateRevisionRequest struct {
	UserID        string              `json:"user_id" binding:"required,uuid"`
	EffectiveFrom string              `json:"effective_from" binding:"required"`
	Note          *string             `json:"note"`
	Lines         []RevisionLineInput `json:"lines" binding:"required,min=1,dive"`
}

type RevisionLineResponse struct {
	HeadCode string `json:"head_code"`
	Amount   string `json:"amount"`
}

type RevisionResponse struct {
	ID            string                 `json:"id"`
	UserID        string                 `json:"user_id"`
	EffectiveFrom string                 `json:"effective_from"`
	Note          *string                `json:"note"`
	Lines         []RevisionLineResponse `json:"lines"`
}
