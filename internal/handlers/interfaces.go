package handlers

import (
	"context"

	"fieldops/internal/models/task"
	"fieldops/internal/models/ticket"
	"fieldops/internal/service"
)

type TaskService interface {
	CreateTask(ctx context.Context, in service.CreateTaskInput) (*task.Task, error)
	SubmitFollowup(ctx context.Context, in service.FollowupInput) (*task.Task, error)
	ListTasksForUser(ctx context.Context, username string) ([]*task.Task, error)
	GetTask(ctx context.Context, id int64) (*task.Task, []*task.FollowupEntry, error)
	HealthCheck(ctx context.Context) error
}

type TicketService interface {
	RegisterTicket(ctx context.Context, in service.RegisterTicketInput) (*ticket.ServiceTicket, error)
	GetTicket(ctx context.Context, serviceID int64) (*service.TicketView, error)
	AttachReport(ctx context.Context, in service.AttachReportInput) (string, error)
	AttachInstallationReport(ctx context.Context, in service.AttachInstallationInput) (string, error)
	SubmitFeedback(ctx context.Context, in service.FeedbackInput) (*ticket.Feedback, error)
}

type AssignService interface {
	SearchAssignable(ctx context.Context, match string) ([]string, error)
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (token string, role string, err error)
}
