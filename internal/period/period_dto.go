package period

type CreatePeriodRequest struct {
	PeriodKey  string `json:"period_key" binding:"required"`
	SourceType string `json:"source_type" binding:"omitempty,oneof=WORKBOOK MANUAL CARRY_FORWARD"`
}

type CarryForwardRequest struct {
	SourcePeriodID string `json:"source_period_id" binding:"required,uuid"`
	PeriodKey      string `json:"period_key" binding:"required"`
}

type ApprovePeriodRequest struct {
	Comment *string `json:"comment"`
}

type PeriodResponse struct {
	ID              string  `json:"id"`
	PeriodKey       string  `json:"period_key"`
	PeriodStart     string  `json:"period_start"`
	PeriodEnd       string  `json:"period_end"`
	Status          string  `json:"status"`
	SourceType      string  `json:"source_type"`
	Summary         *string `json:"summary,omitempty"`
	ApprovedBy      *string `json:"approved_by,omitempty"`
	ApprovalComment *string `json:"approval_comment,omitempty"`
}
