package realtime

import "fmt"

// TypeRegistration tags notifications announcing a newly registered identity.
const TypeRegistration = "registration"

// Notification is the payload delivered to connected clients on broadcast.
type Notification struct {
	Message    string `json:"message"`
	UserHandle string `json:"user_handle"`
	Type       string `json:"type"`
}

// NewRegistrationNotice builds the announcement broadcast when a new identity
// registers.
func NewRegistrationNotice(handle string) Notification {
	return Notification{
		Message:    fmt.Sprintf("New user registered: %s", handle),
		UserHandle: handle,
		Type:       TypeRegistration,
	}
}
