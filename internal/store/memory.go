package store

import (
	"context"
	"sync"
	"time"

	"reports_srv/internal/apperr"
	"reports_srv/internal/models"
)

// MemoryStore хранит отчеты в памяти процесса
type MemoryStore struct {
	mu      sync.Mutex
	reports []models.Report
	nextID  int64
	now     func() time.Time
}

// NewMemoryStore создает хранилище, заполненное переданными отчетами.
// Следующий id на единицу больше максимального из seed.
func NewMemoryStore(seed []models.Report, opts ...Option) *MemoryStore {
	o := applyOptions(opts)

	reports := make([]models.Report, len(seed))
	copy(reports, seed)

	var maxID int64
	for _, r := range reports {
		if r.ID > maxID {
			maxID = r.ID
		}
	}

	return &MemoryStore{
		reports: reports,
		nextID:  maxID + 1,
		now:     o.now,
	}
}

// List возвращает отчеты, подходящие под фильтр
func (s *MemoryStore) List(_ context.Context, filter models.ReportFilter) ([]models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]models.Report, 0, len(s.reports))
	for _, r := range s.reports {
		if filter.Matches(r) {
			result = append(result, r)
		}
	}
	return result, nil
}

// GetByID возвращает копию отчета
func (s *MemoryStore) GetByID(_ context.Context, id int64) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, apperr.NotFound("report %d not found", id)
	}
	r := s.reports[i]
	return &r, nil
}

// Create добавляет отчет со следующим id
func (s *MemoryStore) Create(_ context.Context, params models.CreateParams) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	r := models.Report{
		ID:             s.nextID,
		Title:          params.Title,
		Description:    params.Description,
		CreatedAt:      now,
		CreatedBy:      params.CreatedBy,
		LastModifiedAt: now,
		LastModifiedBy: params.CreatedBy,
	}
	s.nextID++
	s.reports = append(s.reports, r)
	return &r, nil
}

// Update изменяет отчет на месте
func (s *MemoryStore) Update(_ context.Context, id int64, params models.UpdateParams) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, apperr.NotFound("report %d not found", id)
	}

	r := &s.reports[i]
	r.Title = params.Title
	r.Description = params.Description
	r.LastModifiedBy = params.LastModifiedBy
	r.LastModifiedAt = s.now()

	updated := *r
	return &updated, nil
}

// Delete удаляет отчет и возвращает его последнее состояние
func (s *MemoryStore) Delete(_ context.Context, id int64) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, apperr.NotFound("report %d not found", id)
	}

	deleted := s.reports[i]
	s.reports = append(s.reports[:i], s.reports[i+1:]...)
	return &deleted, nil
}

func (s *MemoryStore) indexOf(id int64) int {
	for i := range s.reports {
		if s.reports[i].ID == id {
			return i
		}
	}
	return -1
}
