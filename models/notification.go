// ABOUTME: Notification model shared by every module's notification queue
// ABOUTME: Notifications are push-appended and only leave the queue via mark-as-read
package models

import "time"

type Notification struct {
	ID        string    `json:"id"`
	Module    string    `json:"module"` // crm, marketing, automation, social, research
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func (n Notification) EntityID() string { return n.ID }
