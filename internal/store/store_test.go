package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"reports_srv/internal/apperr"
	"reports_srv/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// steppingClock returns a clock that advances one second per call
func steppingClock() func() time.Time {
	var mu sync.Mutex
	current := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

var seedParams = []models.CreateParams{
	{Title: "Ruth Bader Ginsburg", Description: "Report about an American lawyer and jurist", CreatedBy: "Ruth Bader Ginsburg"},
	{Title: "My Dog Rose", Description: "Report about my dog Rose who enjoys leash laws.", CreatedBy: "John Mayer"},
	{Title: "Three Blind Mice", Description: "Report about seeing how mice run", CreatedBy: "Mickey Mouse"},
}

// storeFactory returns an empty store
type storeFactory func(t *testing.T) ReportStore

func seed(t *testing.T, s ReportStore) []models.Report {
	t.Helper()
	var created []models.Report
	for _, p := range seedParams {
		r, err := s.Create(context.Background(), p)
		require.NoError(t, err)
		created = append(created, *r)
	}
	return created
}

func runStoreContract(t *testing.T, newStore storeFactory) {
	ctx := context.Background()

	t.Run("create assigns unique ids and provenance", func(t *testing.T) {
		s := newStore(t)
		created := seed(t, s)

		ids := map[int64]bool{}
		for _, r := range created {
			assert.False(t, ids[r.ID], "duplicate id %d", r.ID)
			ids[r.ID] = true
			assert.Equal(t, r.CreatedBy, r.LastModifiedBy)
			assert.True(t, r.CreatedAt.Equal(r.LastModifiedAt))
		}
		assert.Equal(t, []int64{1, 2, 3}, []int64{created[0].ID, created[1].ID, created[2].ID})
	})

	t.Run("create then get round trip", func(t *testing.T) {
		s := newStore(t)
		created, err := s.Create(ctx, models.CreateParams{Title: "T", Description: "D", CreatedBy: "U"})
		require.NoError(t, err)

		got, err := s.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "T", got.Title)
		assert.Equal(t, "D", got.Description)
		assert.Equal(t, "U", got.CreatedBy)
		assert.Equal(t, "U", got.LastModifiedBy)
	})

	t.Run("list filters", func(t *testing.T) {
		s := newStore(t)
		seed(t, s)

		all, err := s.List(ctx, models.ReportFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 3)

		byTitle, err := s.List(ctx, models.ReportFilter{Title: "My Dog Rose"})
		require.NoError(t, err)
		require.Len(t, byTitle, 1)
		assert.Equal(t, "My Dog Rose", byTitle[0].Title)

		partialTitle, err := s.List(ctx, models.ReportFilter{Title: "My Dog"})
		require.NoError(t, err)
		assert.Empty(t, partialTitle)

		byDescription, err := s.List(ctx, models.ReportFilter{DescriptionContains: "Report about"})
		require.NoError(t, err)
		assert.Len(t, byDescription, 3)

		mice, err := s.List(ctx, models.ReportFilter{DescriptionContains: "mice run"})
		require.NoError(t, err)
		require.Len(t, mice, 1)
		assert.Equal(t, "Three Blind Mice", mice[0].Title)

		combined, err := s.List(ctx, models.ReportFilter{Title: "My Dog Rose", DescriptionContains: "mice"})
		require.NoError(t, err)
		assert.Empty(t, combined)
	})

	t.Run("description filter is a literal case-sensitive substring", func(t *testing.T) {
		s := newStore(t)
		seed(t, s)
		_, err := s.Create(ctx, models.CreateParams{Title: "Sale", Description: `50%_off c:\sale`, CreatedBy: "U"})
		require.NoError(t, err)

		tests := []struct {
			filter string
			want   []string
		}{
			{filter: "_", want: []string{"Sale"}},
			{filter: "%", want: []string{"Sale"}},
			{filter: "%_", want: []string{"Sale"}},
			{filter: `\`, want: []string{"Sale"}},
			{filter: "0_o", want: nil},
			{filter: "rose", want: nil},
			{filter: "report about", want: nil},
			{filter: "Rose", want: []string{"My Dog Rose"}},
		}

		for _, tt := range tests {
			reports, err := s.List(ctx, models.ReportFilter{DescriptionContains: tt.filter})
			require.NoError(t, err)

			var titles []string
			for _, r := range reports {
				titles = append(titles, r.Title)
			}
			assert.Equal(t, tt.want, titles, "filter %q", tt.filter)
		}
	})

	t.Run("update stamps modification", func(t *testing.T) {
		s := newStore(t)
		created := seed(t, s)

		updated, err := s.Update(ctx, 1, models.UpdateParams{Title: "Modified", Description: "D2", LastModifiedBy: "Test"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), updated.ID)
		assert.Equal(t, "Modified", updated.Title)
		assert.Equal(t, "D2", updated.Description)
		assert.Equal(t, "Test", updated.LastModifiedBy)
		assert.Equal(t, created[0].CreatedBy, updated.CreatedBy)
		assert.True(t, updated.CreatedAt.Equal(created[0].CreatedAt))
		assert.True(t, updated.LastModifiedAt.After(created[0].LastModifiedAt))

		got, err := s.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Modified", got.Title)
	})

	t.Run("delete returns snapshot and removes", func(t *testing.T) {
		s := newStore(t)
		seed(t, s)

		deleted, err := s.Delete(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Ruth Bader Ginsburg", deleted.Title)

		_, err = s.GetByID(ctx, 1)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))

		remaining, err := s.List(ctx, models.ReportFilter{})
		require.NoError(t, err)
		assert.Len(t, remaining, 2)
	})

	t.Run("unknown ids are not found", func(t *testing.T) {
		s := newStore(t)
		seed(t, s)

		_, err := s.GetByID(ctx, 999999999)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))

		_, err = s.Update(ctx, 999999999, models.UpdateParams{Title: "x", Description: "y", LastModifiedBy: "z"})
		assert.True(t, apperr.Is(err, apperr.KindNotFound))

		_, err = s.Delete(ctx, 999999999)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})

	t.Run("ids are not reused after delete", func(t *testing.T) {
		s := newStore(t)
		seed(t, s)

		_, err := s.Delete(ctx, 3)
		require.NoError(t, err)

		created, err := s.Create(ctx, models.CreateParams{Title: "New Report", Description: "D", CreatedBy: "Test"})
		require.NoError(t, err)
		assert.Equal(t, int64(4), created.ID)
	})
}
