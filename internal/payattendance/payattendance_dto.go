package payattendance

type EntryInput struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Date   string `json:"date" binding:"required"`
	Status string `json:"status" binding:"required"`
}

type ImportRequest struct {
	Entries []EntryInput `json:"entries" binding:"required,min=1,dive"`
}

type ImportResultResponse struct {
	Imported int `json:"imported"`
}
