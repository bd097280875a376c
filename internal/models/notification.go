package models

// Notification is one message for one citizen. A nil SendDateTime asks the
// provider to deliver immediately.
type Notification struct {
	Token        string
	AppID        string
	UserID       string
	Message      string
	SendDateTime *string
}
