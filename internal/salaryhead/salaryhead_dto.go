package salaryhead

type CreateHeadRequest struct {
	Code      string `json:"code" binding:"required,uppercase"`
	Name      string `json:"name" binding:"required"`
	Type      string `json:"type" binding:"required"`
	IsTaxable bool   `json:"is_taxable"`
}

type HeadResponse struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	IsTaxable bool   `json:"is_taxable"`
	IsActive  bool   `json:"is_active"`
}
