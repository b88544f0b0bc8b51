package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fieldops/internal/logger"
	"fieldops/internal/models/ticket"
	repo "fieldops/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Storage struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

func (s *Storage) Register(ctx context.Context, t *ticket.ServiceTicket) error {
	start := time.Now()

	query := `INSERT INTO service_records
				(serial_number, service_type, complaint, status, assigned_to, reg_date)
				VALUES ($1, $2, $3, $4, $5, NOW())
				RETURNING id, reg_date`

	err := s.pool.QueryRow(ctx, query,
		t.SerialNumber,
		t.ServiceType,
		t.Complaint,
		t.Status,
		t.AssignedTo,
	).Scan(&t.ID, &t.RegDate)

	if err != nil {
		logger.Error("Repository: Не удалось зарегистрировать заявку", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("регистрация заявки: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) GetByID(ctx context.Context, serviceID int64) (*ticket.ServiceTicket, error) {
	start := time.Now()

	query := `SELECT
				id,
				serial_number,
				service_type,
				complaint,
				status,
				assigned_to,
				reg_date,
				completed_date,
				COALESCE(report_path, ''),
				COALESCE(final_report_path, ''),
				COALESCE(installation_report, ''),
				COALESCE(pdf_path, '')
				FROM service_records
				WHERE id = $1`

	t := &ticket.ServiceTicket{}
	err := s.pool.QueryRow(ctx, query, serviceID).Scan(
		&t.ID,
		&t.SerialNumber,
		&t.ServiceType,
		&t.Complaint,
		&t.Status,
		&t.AssignedTo,
		&t.RegDate,
		&t.CompletedDate,
		&t.ReportPath,
		&t.FinalReportPath,
		&t.InstallationReport,
		&t.PDFPath,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить заявку", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение заявки: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return t, nil
}

// Product - гарантийная карточка по серийному номеру заявки
func (s *Storage) Product(ctx context.Context, serialNumber string) (*ticket.Product, error) {
	query := `SELECT
				serial_number,
				model,
				customer_name,
				purchase_date,
				warranty_until
				FROM warranty_products
				WHERE serial_number = $1`

	p := &ticket.Product{}
	err := s.pool.QueryRow(ctx, query, serialNumber).Scan(
		&p.SerialNumber,
		&p.Model,
		&p.CustomerName,
		&p.PurchaseDate,
		&p.WarrantyUntil,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить продукт", err)
		return nil, fmt.Errorf("получение продукта: %w", err)
	}
	return p, nil
}

// InstallationReportFor - отчёт по установке на текущей стадии заявки,
// ключ составной (service_id, status)
func (s *Storage) InstallationReportFor(ctx context.Context, serviceID int64, status ticket.Status) (*ticket.InstallationReport, error) {
	query := `SELECT
				id,
				service_id,
				status,
				path,
				uploaded_by,
				uploaded_at
				FROM installation_reports
				WHERE service_id = $1 AND status = $2
				ORDER BY uploaded_at DESC
				LIMIT 1`

	r := &ticket.InstallationReport{}
	err := s.pool.QueryRow(ctx, query, serviceID, status).Scan(
		&r.ID,
		&r.ServiceID,
		&r.Status,
		&r.Path,
		&r.UploadedBy,
		&r.UploadedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить отчёт по установке", err,
			zap.Int64("service_id", serviceID))
		return nil, fmt.Errorf("получение отчёта по установке: %w", err)
	}
	return r, nil
}

// UpdateStageReport пишет указатель отчёта стадии: report_path для
// PENDING FOR SPARES, final_report_path и completed_date для COMPLETED
func (s *Storage) UpdateStageReport(ctx context.Context, t *ticket.ServiceTicket) error {
	start := time.Now()

	var query string
	switch t.Status.Report() {
	case ticket.ReportSpares:
		query = `UPDATE service_records
			SET status = $1,
				report_path = $2
			WHERE id = $3`
	case ticket.ReportFinal:
		query = `UPDATE service_records
			SET status = $1,
				final_report_path = $2,
				completed_date = $4
			WHERE id = $3`
	default:
		return fmt.Errorf("статус %q не принимает отчёт", t.Status)
	}

	var args []any
	if t.Status.Report() == ticket.ReportFinal {
		args = []any{t.Status, t.FinalReportPath, t.ID, t.CompletedDate}
	} else {
		args = []any{t.Status, t.ReportPath, t.ID}
	}

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Не удалось обновить отчёт стадии", err,
			zap.Int64("service_id", t.ID))
		return fmt.Errorf("обновление отчёта стадии: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

// AttachInstallation обновляет указатель отчёта по установке, добавляет
// сервисную запись и отчёт текущей стадии одной транзакцией
func (s *Storage) AttachInstallation(ctx context.Context, t *ticket.ServiceTicket, report *ticket.ServiceReport) error {
	start := time.Now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		logger.Error("Repository: Не удалось открыть транзакцию", err)
		return fmt.Errorf("открытие транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE service_records SET installation_report = $1 WHERE id = $2`,
		t.InstallationReport, t.ID)
	if err != nil {
		logger.Error("Repository: Не удалось обновить указатель отчёта", err,
			zap.Int64("service_id", t.ID))
		return fmt.Errorf("обновление указателя отчёта: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO service_reports (service_id, path, uploaded_by, uploaded_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
		report.ServiceID, report.Path, report.UploadedBy, report.UploadedAt,
	).Scan(&report.ID)
	if err != nil {
		logger.Error("Repository: Не удалось добавить сервисную запись", err,
			zap.Int64("service_id", t.ID))
		return fmt.Errorf("добавление сервисной записи: %w", err)
	}

	// отчёт привязывается к стадии, на которой его загрузили
	_, err = tx.Exec(ctx,
		`INSERT INTO installation_reports (service_id, status, path, uploaded_by, uploaded_at)
			VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.Status, report.Path, report.UploadedBy, report.UploadedAt)
	if err != nil {
		logger.Error("Repository: Не удалось добавить отчёт стадии установки", err,
			zap.Int64("service_id", t.ID))
		return fmt.Errorf("добавление отчёта стадии установки: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Error("Repository: Не удалось закоммитить отчёт по установке", err,
			zap.Int64("service_id", t.ID))
		return fmt.Errorf("коммит отчёта по установке: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) CreateFeedback(ctx context.Context, f *ticket.Feedback) error {
	query := `INSERT INTO form_submissions
				(service_id, rating, description, created_at)
				VALUES ($1, $2, $3, NOW())
				RETURNING id, created_at`

	err := s.pool.QueryRow(ctx, query,
		f.ServiceID,
		f.Rating,
		f.Description,
	).Scan(&f.ID, &f.CreatedAt)

	if err != nil {
		logger.Error("Repository: Не удалось сохранить отзыв", err,
			zap.Int64("service_id", f.ServiceID))
		return fmt.Errorf("сохранение отзыва: %w", err)
	}
	return nil
}
