package dto

import (
	"time"

	"fieldops/internal/models/task"
	"fieldops/internal/models/ticket"
)

type CreateTaskRequest struct {
	Name       string    `json:"name" validate:"required"`
	AssignedTo string    `json:"assigned_to" validate:"required"`
	Deadline   time.Time `json:"deadline" validate:"required"`
	Priority   string    `json:"priority" validate:"omitempty,oneof=Low Normal High"`
	Category   string    `json:"category"`
	Notes      string    `json:"notes"`
}

type FollowupRequest struct {
	Notes          string     `json:"notes" validate:"required"`
	FollowedAt     time.Time  `json:"followed_at" validate:"required"`
	Status         string     `json:"status" validate:"required"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`
	AssignedTo     string     `json:"assigned_to,omitempty"`
}

type RegisterTicketRequest struct {
	SerialNumber string `json:"serial_number" validate:"required"`
	ServiceType  string `json:"service_type" validate:"required"`
	Complaint    string `json:"complaint"`
	AssignedTo   string `json:"assigned_to"`
}

type FeedbackRequest struct {
	Rating      int    `json:"rating" validate:"required,min=1,max=5"`
	Description string `json:"description"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TaskResponse struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	CreatedBy      string     `json:"created_by"`
	AssignedTo     string     `json:"assigned_to"`
	Priority       string     `json:"priority"`
	Category       string     `json:"category,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	Status         string     `json:"status"`
	Deadline       time.Time  `json:"deadline"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`
	IsOverdue      bool       `json:"is_overdue"`
	Attachments    []string   `json:"attachments,omitempty"`
}

func FromTask(t *task.Task) TaskResponse {
	return TaskResponse{
		ID:             t.ID,
		Name:           t.Name,
		CreatedBy:      t.CreatedBy,
		AssignedTo:     t.AssignedTo,
		Priority:       t.Priority,
		Category:       t.Category,
		Notes:          t.Notes,
		Status:         string(t.Status),
		Deadline:       t.Deadline,
		CreatedAt:      t.CreatedAt,
		CompletionDate: t.CompletionDate,
		IsOverdue: t.Status != task.StatusCompleted &&
			t.Deadline.Before(time.Now()),
		Attachments: t.Attachments,
	}
}

func FromTaskList(tasks []*task.Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}

type FollowupResponse struct {
	ID             int64      `json:"id"`
	TaskID         int64      `json:"task_id"`
	Notes          string     `json:"notes"`
	Status         string     `json:"status"`
	FollowedAt     time.Time  `json:"followed_at"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`
	CreatedBy      string     `json:"created_by"`
	AssignedTo     string     `json:"assigned_to"`
}

func FromFollowupList(entries []*task.FollowupEntry) []FollowupResponse {
	result := make([]FollowupResponse, len(entries))
	for i, e := range entries {
		result[i] = FollowupResponse{
			ID:             e.ID,
			TaskID:         e.TaskID,
			Notes:          e.Notes,
			Status:         string(e.Status),
			FollowedAt:     e.FollowedAt,
			CompletionDate: e.CompletionDate,
			CreatedBy:      e.CreatedBy,
			AssignedTo:     e.AssignedTo,
		}
	}
	return result
}

type FeedbackResponse struct {
	ID        int64     `json:"id"`
	ServiceID int64     `json:"service_id"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

func FromFeedback(f *ticket.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:        f.ID,
		ServiceID: f.ServiceID,
		Rating:    f.Rating,
		CreatedAt: f.CreatedAt,
	}
}
