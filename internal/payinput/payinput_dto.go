package payinput

// ImportRowRequest is the upstream tuple contract: one parsed input line per
// (payroll name, component key). The engine does not care whether the parser
// was a workbook importer, manual entry, or a carry-forward copy.
type ImportRowRequest struct {
	PayrollName    string  `json:"payroll_name" binding:"required"`
	ComponentKey   string  `json:"component_key" binding:"required"`
	Amount         float64 `json:"amount"`
	SourceSheet    string  `json:"source_sheet"`
	SourceCell     string  `json:"source_cell"`
	SourcePriority int     `json:"source_priority"`
}

type ImportRequest struct {
	SourceMethod string             `json:"source_method" binding:"required,oneof=WORKBOOK MANUAL CARRY_FORWARD"`
	Rows         []ImportRowRequest `json:"rows" binding:"required,min=1,dive"`
}

type ExpenseEntryRequest struct {
	PayrollName string  `json:"payroll_name" binding:"required"`
	CategoryKey string  `json:"category_key" binding:"required"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount" binding:"required"`
}

type ImportExpensesRequest struct {
	Entries []ExpenseEntryRequest `json:"entries" binding:"required,min=1,dive"`
}

type OverrideRequest struct {
	PayrollName  string  `json:"payroll_name" binding:"required"`
	ComponentKey string  `json:"component_key" binding:"required"`
	Amount       float64 `json:"amount"`
}

type InputValueResponse struct {
	ID           string  `json:"id"`
	PeriodID     string  `json:"period_id"`
	PayrollName  string  `json:"payroll_name"`
	ComponentKey string  `json:"component_key"`
	Amount       string  `json:"amount"`
	SourceMethod string  `json:"source_method"`
	IsOverride   bool    `json:"is_override"`
	Provenance   *string `json:"provenance,omitempty"`
}

type ImportResultResponse struct {
	PeriodID string `json:"period_id"`
	RowCount int    `json:"row_count"`
}
