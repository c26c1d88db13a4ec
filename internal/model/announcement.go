package model

// Announcement board post, table announcements
type Announcement struct {
	AnnouncementID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"announcement_id"`
	Title          string `gorm:"type:varchar(200);not null"                     json:"title"`
	Content        string `gorm:"type:text;not null"                             json:"content"`
	Author         string `gorm:"type:varchar(100);not null"                     json:"author"`
	SoftDeleteModel
}

// TableName table name
func (Announcement) TableName() string { return "announcements" }
