package identity

type EmployeeRecord struct {
	UserID   string `json:"user_id" binding:"required,uuid"`
	FullName string `json:"full_name" binding:"required"`
}

type SyncMappingsRequest struct {
	Names     []string         `json:"names" binding:"required,min=1"`
	Employees []EmployeeRecord `json:"employees" binding:"required,min=1,dive"`
}

type SyncMappingsResponse struct {
	ResolvedCount  int      `json:"resolved_count"`
	AmbiguousCount int      `json:"ambiguous_count"`
	Unmatched      []string `json:"unmatched"`
	SkippedCount   int      `json:"skipped_count"`
}

type MappingResponse struct {
	NormalizedName string  `json:"normalized_name"`
	UserID         *string `json:"user_id"`
	Status         string  `json:"status"`
}
