package cache

import "fmt"

// Cache keys are namespaced per resource type and per tenant scope so one
// office can never be served another office's snapshot.

// TasksAllKey holds the cross-office task listing.
const TasksAllKey = "tasks:all"

// UserKey returns the snapshot key for a single user profile.
func UserKey(userID uint64) string {
	return fmt.Sprintf("user:%d", userID)
}

// TasksOfficeKey returns the key for one office's task collection.
func TasksOfficeKey(officeID uint64) string {
	return fmt.Sprintf("tasks:office:%d", officeID)
}

// MessagesOfficeKey returns the key for one office's message history.
func MessagesOfficeKey(officeID uint64) string {
	return fmt.Sprintf("messages:office:%d", officeID)
}
