package domain

// User is the entity reference the reports read; ownership of the full
// user record stays with the persistence layer.
type User struct {
	ID       int64
	FullName string
	Email    string
}

// Task priorities and statuses as stored in the fact database.
const (
	PriorityLow    = 1
	PriorityNormal = 2
	PriorityHigh   = 3

	StatusOpen   = 1
	StatusClosed = 2
)

// Task is the entity reference for task-based reports.
type Task struct {
	ID         int64
	ProjectID  int64
	Name       string
	PriorityID int64
	StatusID   int64
}

// PriorityLabel maps the numeric priority to its display label.
func (t Task) PriorityLabel() string {
	switch t.PriorityID {
	case PriorityLow:
		return "Low"
	case PriorityNormal:
		return "Normal"
	case PriorityHigh:
		return "High"
	default:
		return "Unknown"
	}
}

// StatusLabel maps the numeric status to its display label.
func (t Task) StatusLabel() string {
	switch t.StatusID {
	case StatusOpen:
		return "Open"
	case StatusClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Project is the entity reference for project-based reports.
type Project struct {
	ID   int64
	Name string
}
