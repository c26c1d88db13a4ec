package dto

// ── announcement DTOs ──

// AnnouncementRequest create/update payload
type AnnouncementRequest struct {
	Title   string `json:"title"   binding:"required,max=200"`
	Content string `json:"content" binding:"required,max=10000"`
}

// AnnouncementResponse announcement
type AnnouncementResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Author    string `json:"author"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}
