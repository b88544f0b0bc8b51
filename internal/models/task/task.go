package task

import (
	"time"
)

type Task struct {
	ID             int64      `json:"id" db:"id"`
	Name           string     `json:"name" db:"name"`
	CreatedBy      string     `json:"created_by" db:"created_by"`
	AssignedTo     string     `json:"assigned_to" db:"assigned_to"`
	Priority       string     `json:"priority" db:"priority"`
	Category       string     `json:"category" db:"category"`
	Notes          string     `json:"notes" db:"notes"`
	Status         Status     `json:"status" db:"status"`
	Deadline       time.Time  `json:"deadline" db:"deadline"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	CompletionDate *time.Time `json:"completion_date,omitempty" db:"completion_date"`
	Version        int        `json:"version" db:"version"`

	// публичные пути файлов, приложенных при создании
	Attachments []string `json:"attachments,omitempty"`
}

// запись журнала фоллоу-апов, только добавляется, никогда не редактируется
type FollowupEntry struct {
	ID             int64      `json:"id" db:"id"`
	TaskID         int64      `json:"task_id" db:"task_id"`
	Name           string     `json:"name" db:"name"`
	Notes          string     `json:"notes" db:"notes"`
	Status         Status     `json:"status" db:"status"`
	FollowedAt     time.Time  `json:"followed_at" db:"followed_at"`
	Deadline       time.Time  `json:"deadline" db:"deadline"`
	CompletionDate *time.Time `json:"completion_date,omitempty" db:"completion_date"`
	CreatedBy      string     `json:"created_by" db:"created_by"`
	AssignedTo     string     `json:"assigned_to" db:"assigned_to"`
}

type Status string

const StatusPending Status = "Pending"
const StatusWorking Status = "Working"
const StatusCompleted Status = "Completed"

const PriorityLow = "Low"
const PriorityNormal = "Normal"
const PriorityHigh = "High"
