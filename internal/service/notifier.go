package service

// Entities and actions published to live clients.
const (
	EntityCurfewRequest = "curfew_request"
	EntityAnnouncement  = "announcement"
	EntityEvent         = "event"

	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Notifier receives change notifications after a successful write.
// Implementations must not block the caller.
type Notifier interface {
	Notify(entity, action, id string)
}

// NopNotifier discards notifications.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(string, string, string) {}
