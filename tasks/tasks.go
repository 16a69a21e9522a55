package tasks

import (
	"strings"
	"time"

	"github.com/jrsteele09/go-ems-server/internal/errors"
	"github.com/jrsteele09/go-ems-server/internal/utils"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority defaults an empty value to medium.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PriorityMedium, nil
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	}
	return "", errors.Validation("Invalid task priority")
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusInProgress, StatusCompleted:
		return st, nil
	}
	return "", errors.Validation("Invalid task status")
}

type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	AssignedTo  int64     `json:"assigned_to"`
	AssignedBy  int64     `json:"assigned_by"`
	DueDate     *string   `json:"due_date"`
	Priority    Priority  `json:"priority"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTask validates a task assignment. Priority defaults to medium and the
// task starts pending.
func NewTask(title, description string, assignedTo, assignedBy int64, dueDate, priority string) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.Validation("Task title is required")
	}
	if assignedTo <= 0 {
		return nil, errors.Validation("assigned_to is required")
	}
	p, err := ParsePriority(priority)
	if err != nil {
		return nil, err
	}
	t := &Task{
		Title:       title,
		Description: strings.TrimSpace(description),
		AssignedTo:  assignedTo,
		AssignedBy:  assignedBy,
		Priority:    p,
		Status:      StatusPending,
	}
	if strings.TrimSpace(dueDate) != "" {
		d, err := utils.ParseDate(dueDate)
		if err != nil {
			return nil, errors.Validation("Invalid due_date, expected YYYY-MM-DD")
		}
		t.DueDate = &d
	}
	return t, nil
}
