package inmemory

import (
	"context"
	"sync"
	"time"

	"fieldops/internal/models/ticket"
	repo "fieldops/internal/repository"
)

type TicketStorage struct {
	mtx       *sync.RWMutex
	tickets   map[int64]*ticket.ServiceTicket
	products  map[string]*ticket.Product
	installs  []*ticket.InstallationReport
	reports   []*ticket.ServiceReport
	feedbacks []*ticket.Feedback
	nextID    int64

	// FailUpdates имитирует отказ БД после успешной записи файла,
	// чтобы проверять компенсацию в сервисе
	FailUpdates bool
}

func NewTicketStorage() *TicketStorage {
	return &TicketStorage{
		mtx:      &sync.RWMutex{},
		tickets:  make(map[int64]*ticket.ServiceTicket),
		products: make(map[string]*ticket.Product),
		nextID:   1,
	}
}

func (s *TicketStorage) PutProduct(p *ticket.Product) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	copied := *p
	s.products[p.SerialNumber] = &copied
}

func (s *TicketStorage) Register(ctx context.Context, t *ticket.ServiceTicket) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	t.ID = s.nextID
	s.nextID++
	t.RegDate = time.Now()

	copied := *t
	s.tickets[t.ID] = &copied
	return nil
}

func (s *TicketStorage) GetByID(ctx context.Context, serviceID int64) (*ticket.ServiceTicket, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	t, ok := s.tickets[serviceID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (s *TicketStorage) Product(ctx context.Context, serialNumber string) (*ticket.Product, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	p, ok := s.products[serialNumber]
	if !ok {
		return nil, repo.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *TicketStorage) InstallationReportFor(ctx context.Context, serviceID int64, status ticket.Status) (*ticket.InstallationReport, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	for i := len(s.installs) - 1; i >= 0; i-- {
		r := s.installs[i]
		if r.ServiceID == serviceID && r.Status == status {
			copied := *r
			return &copied, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *TicketStorage) UpdateStageReport(ctx context.Context, t *ticket.ServiceTicket) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.FailUpdates {
		return repo.ErrVersionConflict
	}

	stored, ok := s.tickets[t.ID]
	if !ok {
		return repo.ErrNotFound
	}

	stored.Status = t.Status
	switch t.Status.Report() {
	case ticket.ReportSpares:
		stored.ReportPath = t.ReportPath
	case ticket.ReportFinal:
		stored.FinalReportPath = t.FinalReportPath
		stored.CompletedDate = t.CompletedDate
	}
	return nil
}

func (s *TicketStorage) AttachInstallation(ctx context.Context, t *ticket.ServiceTicket, report *ticket.ServiceReport) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.FailUpdates {
		return repo.ErrVersionConflict
	}

	stored, ok := s.tickets[t.ID]
	if !ok {
		return repo.ErrNotFound
	}

	stored.InstallationReport = t.InstallationReport

	report.ID = int64(len(s.reports) + 1)
	copied := *report
	s.reports = append(s.reports, &copied)

	// отчёт текущей стадии, его вернёт InstallationReportFor
	s.installs = append(s.installs, &ticket.InstallationReport{
		ID:         int64(len(s.installs) + 1),
		ServiceID:  t.ID,
		Status:     stored.Status,
		Path:       report.Path,
		UploadedBy: report.UploadedBy,
		UploadedAt: report.UploadedAt,
	})
	return nil
}

func (s *TicketStorage) CreateFeedback(ctx context.Context, f *ticket.Feedback) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	f.ID = int64(len(s.feedbacks) + 1)
	f.CreatedAt = time.Now()
	copied := *f
	s.feedbacks = append(s.feedbacks, &copied)
	return nil
}
