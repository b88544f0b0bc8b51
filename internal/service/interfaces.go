package service

import (
	"context"

	"fieldops/internal/models/task"
	"fieldops/internal/models/ticket"
	"fieldops/internal/models/user"
)

type TaskRepository interface {
	Create(ctx context.Context, t *task.Task, initial *task.FollowupEntry) error
	GetByID(ctx context.Context, id int64) (*task.Task, error)
	SubmitFollowup(ctx context.Context, t *task.Task, entry *task.FollowupEntry) error
	ListForUser(ctx context.Context, username string) ([]*task.Task, error)
	Followups(ctx context.Context, taskID int64) ([]*task.FollowupEntry, error)
	HealthCheck(ctx context.Context) error
}

type TicketRepository interface {
	Register(ctx context.Context, t *ticket.ServiceTicket) error
	GetByID(ctx context.Context, serviceID int64) (*ticket.ServiceTicket, error)
	Product(ctx context.Context, serialNumber string) (*ticket.Product, error)
	InstallationReportFor(ctx context.Context, serviceID int64, status ticket.Status) (*ticket.InstallationReport, error)
	UpdateStageReport(ctx context.Context, t *ticket.ServiceTicket) error
	AttachInstallation(ctx context.Context, t *ticket.ServiceTicket, report *ticket.ServiceReport) error
	CreateFeedback(ctx context.Context, f *ticket.Feedback) error
}

type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*user.User, error)
	SearchAssignable(ctx context.Context, match string, limit int) ([]string, error)
}

// ReportStore - внешний коллаборатор файлового хранилища
type ReportStore interface {
	Save(category, fileName string, data []byte) (string, error)
	Remove(publicPath string) error
}
