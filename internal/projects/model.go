// Package projects provides lightweight project boards: tasks move through
// status lanes and carry a comment thread.
package projects

import "time"

// Board groups tasks for one project.
type Board struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// TaskStatus is the lane a task sits in.
type TaskStatus string

const (
	StatusTodo  TaskStatus = "TODO"
	StatusDoing TaskStatus = "DOING"
	StatusDone  TaskStatus = "DONE"
)

// Valid reports whether the status is one of the three lanes.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusDoing, StatusDone:
		return true
	}
	return false
}

// Task is one unit of work on a board.
type Task struct {
	ID        int64      `json:"id"`
	BoardID   int64      `json:"board_id"`
	Title     string     `json:"title"`
	Details   string     `json:"details"`
	Status    TaskStatus `json:"status"`
	CreatedBy int64      `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Comment is one message on a task's thread.
type Comment struct {
	ID          int64     `json:"id"`
	TaskID      int64     `json:"task_id"`
	AuthorID    int64     `json:"author_id"`
	AuthorEmail string    `json:"author_email"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}
