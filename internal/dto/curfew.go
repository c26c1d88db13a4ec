package dto

// ── curfew request DTOs ──

// SubmitCurfewRequest resident form payload. Owner and status are never read
// from the client.
type SubmitCurfewRequest struct {
	CaseWorker    string `json:"caseWorker"    binding:"required,max=100"`
	StartDate     string `json:"startDate"     binding:"required"`
	EndDate       string `json:"endDate"       binding:"required"`
	StartTime     string `json:"startTime"     binding:"required"`
	EndTime       string `json:"endTime"       binding:"required"`
	Reason        string `json:"reason"        binding:"required,max=2000"`
	ExtraInfo     string `json:"extraInfo"     binding:"omitempty,max=2000"`
	ChoreCoverage string `json:"choreCoverage" binding:"omitempty,max=2000"`
	Signature     string `json:"signature"     binding:"required,max=200"`
}

// DecideCurfewRequest admin decision
type DecideCurfewRequest struct {
	ID       string  `json:"id"       binding:"required"`
	Accepted *bool   `json:"accepted" binding:"required"`
	Reason   *string `json:"reason"   binding:"omitempty,max=2000"`
}

// CurfewListRequest list filter (admin only)
type CurfewListRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=pending approved denied"`
}

// CurfewResponse curfew request as seen by clients
type CurfewResponse struct {
	ID              string  `json:"id"`
	UserID          string  `json:"userId"`
	UserName        string  `json:"userName,omitempty"`
	UserEmail       string  `json:"userEmail,omitempty"`
	CaseWorker      string  `json:"caseWorker"`
	StartDate       string  `json:"startDate"`
	EndDate         string  `json:"endDate"`
	StartTime       string  `json:"startTime"`
	EndTime         string  `json:"endTime"`
	Reason          string  `json:"reason"`
	ExtraInfo       string  `json:"extraInfo"`
	ChoreCoverage   string  `json:"choreCoverage"`
	Signature       string  `json:"signature"`
	Status          string  `json:"status"`
	ReasonForDenial *string `json:"reasonForDenial"`
	DecidedBy       *string `json:"decidedBy,omitempty"`
	DecidedAt       *string `json:"decidedAt,omitempty"`
	CreatedAt       string  `json:"createdAt"`
}

// CaseWorkerResponse selectable case worker
type CaseWorkerResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
