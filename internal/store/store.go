package store

import (
	"context"
	"time"

	"reports_srv/internal/models"
)

// ReportStore defines the storage contract shared by every backend.
//
// Mutations return the full report: Create and Update the post-mutation state,
// Delete the snapshot taken before removal. Unknown ids fail with apperr.KindNotFound.
type ReportStore interface {
	List(ctx context.Context, filter models.ReportFilter) ([]models.Report, error)
	GetByID(ctx context.Context, id int64) (*models.Report, error)
	Create(ctx context.Context, params models.CreateParams) (*models.Report, error)
	Update(ctx context.Context, id int64, params models.UpdateParams) (*models.Report, error)
	Delete(ctx context.Context, id int64) (*models.Report, error)
}

// Option настраивает хранилище
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock подменяет источник текущего времени
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func applyOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
