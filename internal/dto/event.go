package dto

// ── event DTOs ──

// EventRequest create/update payload
type EventRequest struct {
	Title     string `json:"title"     binding:"required,max=200"`
	Content   string `json:"content"   binding:"required,max=10000"`
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate"   binding:"required"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime"   binding:"required"`
}

// EventListRequest optional date window, YYYY-MM-DD, inclusive
type EventListRequest struct {
	From string `form:"from"`
	To   string `form:"to"`
}

// EventResponse event
type EventResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	StartAt   string `json:"startAt"`
	EndAt     string `json:"endAt"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// ImportEventsRequest ICS import by URL
type ImportEventsRequest struct {
	URL string `json:"url" binding:"required,max=2048"`
}

// ImportEventsResponse ICS import result
type ImportEventsResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}
