package repository

import "gorm.io/gorm"

// Repository aggregates every data access interface.
type Repository struct {
	User         UserRepository
	Curfew       CurfewRepository
	Announcement AnnouncementRepository
	Event        EventRepository
}

// NewRepository wires the gorm implementations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:         NewUserRepo(db),
		Curfew:       NewCurfewRepo(db),
		Announcement: NewAnnouncementRepo(db),
		Event:        NewEventRepo(db),
	}
}
