package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fieldops/internal/logger"
	"fieldops/internal/models/ticket"
	rep "fieldops/internal/repository"
	"fieldops/internal/storage"

	"go.uber.org/zap"
)

type TicketService struct {
	repo  TicketRepository
	files ReportStore
}

func NewTicketService(repo TicketRepository, files ReportStore) TicketService {
	return TicketService{
		repo:  repo,
		files: files,
	}
}

type RegisterTicketInput struct {
	SerialNumber string
	ServiceType  string
	Complaint    string
	AssignedTo   string
}

func (s *TicketService) RegisterTicket(ctx context.Context, in RegisterTicketInput) (*ticket.ServiceTicket, error) {
	if strings.TrimSpace(in.SerialNumber) == "" {
		return nil, NewValidationError("serial_number", "обязательное поле")
	}
	if strings.TrimSpace(in.ServiceType) == "" {
		return nil, NewValidationError("service_type", "обязательное поле")
	}

	t := &ticket.ServiceTicket{
		SerialNumber: in.SerialNumber,
		ServiceType:  in.ServiceType,
		Complaint:    in.Complaint,
		AssignedTo:   in.AssignedTo,
		Status:       ticket.StatusOpen,
	}

	if err := s.repo.Register(ctx, t); err != nil {
		return nil, fmt.Errorf("регистрация заявки: %w", err)
	}

	logger.Info("Service: Заявка зарегистрирована",
		zap.Int64("service_id", t.ID),
		zap.String("serial_number", t.SerialNumber))
	return t, nil
}

type TicketView struct {
	Ticket             *ticket.ServiceTicket      `json:"ticket"`
	Product            *ticket.Product            `json:"product,omitempty"`
	InstallationReport *ticket.InstallationReport `json:"installation_report,omitempty"`
}

// GetTicket собирает заявку, гарантийную карточку по серийному номеру
// и отчёт по установке текущей стадии
func (s *TicketService) GetTicket(ctx context.Context, serviceID int64) (*TicketView, error) {
	t, err := s.repo.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Заявка не найдена", zap.Int64("target_id", serviceID))
			return nil, NewNotFound("заявка", serviceID)
		}
		return nil, fmt.Errorf("получение заявки: %w", err)
	}

	view := &TicketView{Ticket: t}

	product, err := s.repo.Product(ctx, t.SerialNumber)
	if err != nil && !errors.Is(err, rep.ErrNotFound) {
		return nil, fmt.Errorf("получение продукта: %w", err)
	}
	view.Product = product

	report, err := s.repo.InstallationReportFor(ctx, t.ID, t.Status)
	if err != nil && !errors.Is(err, rep.ErrNotFound) {
		return nil, fmt.Errorf("получение отчёта по установке: %w", err)
	}
	view.InstallationReport = report

	return view, nil
}

type AttachReportInput struct {
	ServiceID int64
	Status    ticket.Status
	FileName  string
	Data      []byte
}

// AttachReport: сначала файл, потом БД. Отказ записи файла не трогает БД;
// отказ БД после записи файла компенсируется удалением файла (сага).
func (s *TicketService) AttachReport(ctx context.Context, in AttachReportInput) (string, error) {
	if !in.Status.AcceptsReport() {
		return "", NewValidationError("status",
			fmt.Sprintf("отчёт принимается только в статусах %q и %q", ticket.StatusPendingSpares, ticket.StatusCompleted))
	}
	if len(in.Data) == 0 {
		return "", NewValidationError("file", "файл отсутствует")
	}

	t, err := s.repo.GetByID(ctx, in.ServiceID)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Заявка не найдена", zap.Int64("target_id", in.ServiceID))
			return "", NewNotFound("заявка", in.ServiceID)
		}
		return "", fmt.Errorf("получение заявки: %w", err)
	}

	if t.Status.Terminal() {
		return "", NewCompletedTerminal("заявка", t.ID)
	}
	if !t.Status.CanTransition(in.Status) {
		return "", NewInvalidTransition("заявка", string(t.Status), string(in.Status))
	}

	category := storage.CategorySparesReports
	if in.Status.Report() == ticket.ReportFinal {
		category = storage.CategoryFinalReports
	}

	publicPath, err := s.files.Save(category, in.FileName, in.Data)
	if err != nil {
		logger.Error("Service: Не удалось сохранить отчёт", err, zap.Int64("service_id", t.ID))
		return "", NewStorageError("сохранение отчёта", err)
	}

	t.Status = in.Status
	switch in.Status.Report() {
	case ticket.ReportSpares:
		t.ReportPath = publicPath
	case ticket.ReportFinal:
		t.FinalReportPath = publicPath
		today := time.Now().Truncate(24 * time.Hour)
		t.CompletedDate = &today
	}

	if err := s.repo.UpdateStageReport(ctx, t); err != nil {
		// компенсация: файл уже на диске, БД не обновилась
		if rmErr := s.files.Remove(publicPath); rmErr != nil {
			logger.Warn("Service: Компенсация не удалась, файл-сирота",
				zap.String("path", publicPath), zap.Error(rmErr))
		}
		logger.Error("Service: Отчёт стадии не применён", err, zap.Int64("service_id", t.ID))
		return "", NewTransitionError("заявка", t.ID, err)
	}

	logger.Info("Service: Отчёт стадии приложен",
		zap.Int64("service_id", t.ID),
		zap.String("status", string(t.Status)),
		zap.String("path", publicPath))
	return publicPath, nil
}

type AttachInstallationInput struct {
	ServiceID  int64
	FileName   string
	Data       []byte
	UploadedBy string
}

func (s *TicketService) AttachInstallationReport(ctx context.Context, in AttachInstallationInput) (string, error) {
	if len(in.Data) == 0 {
		return "", NewValidationError("file", "файл отсутствует")
	}

	t, err := s.repo.GetByID(ctx, in.ServiceID)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Заявка не найдена", zap.Int64("target_id", in.ServiceID))
			return "", NewNotFound("заявка", in.ServiceID)
		}
		return "", fmt.Errorf("получение заявки: %w", err)
	}

	publicPath, err := s.files.Save(storage.CategoryInstallationReports, in.FileName, in.Data)
	if err != nil {
		logger.Error("Service: Не удалось сохранить отчёт по установке", err, zap.Int64("service_id", t.ID))
		return "", NewStorageError("сохранение отчёта по установке", err)
	}

	t.InstallationReport = publicPath
	report := &ticket.ServiceReport{
		ServiceID:  t.ID,
		Path:       publicPath,
		UploadedBy: in.UploadedBy,
		UploadedAt: time.Now(),
	}

	if err := s.repo.AttachInstallation(ctx, t, report); err != nil {
		if rmErr := s.files.Remove(publicPath); rmErr != nil {
			logger.Warn("Service: Компенсация не удалась, файл-сирота",
				zap.String("path", publicPath), zap.Error(rmErr))
		}
		logger.Error("Service: Отчёт по установке не применён", err, zap.Int64("service_id", t.ID))
		return "", NewTransitionError("заявка", t.ID, err)
	}

	logger.Info("Service: Отчёт по установке приложен",
		zap.Int64("service_id", t.ID),
		zap.String("path", publicPath))
	return publicPath, nil
}

type FeedbackInput struct {
	ServiceID   int64
	Rating      int
	Description string
}

func (s *TicketService) SubmitFeedback(ctx context.Context, in FeedbackInput) (*ticket.Feedback, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, NewValidationError("rating", "оценка от 1 до 5")
	}

	if _, err := s.repo.GetByID(ctx, in.ServiceID); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound("заявка", in.ServiceID)
		}
		return nil, fmt.Errorf("получение заявки: %w", err)
	}

	f := &ticket.Feedback{
		ServiceID:   in.ServiceID,
		Rating:      in.Rating,
		Description: in.Description,
	}

	if err := s.repo.CreateFeedback(ctx, f); err != nil {
		return nil, fmt.Errorf("сохранение отзыва: %w", err)
	}

	logger.Info("Service: Отзыв сохранён",
		zap.Int64("service_id", f.ServiceID),
		zap.Int("rating", f.Rating))
	return f, nil
}
