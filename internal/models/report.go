package models

import (
	"strings"
	"time"
)

// Report represents a titled, described record with creation and modification provenance
type Report struct {
	ID             int64     `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Title          string    `json:"title" gorm:"column:title;size:255;not null"`
	Description    string    `json:"description" gorm:"column:description;size:1000;not null"`
	CreatedAt      time.Time `json:"createdAt" gorm:"column:created_at;not null"`
	CreatedBy      string    `json:"createdBy" gorm:"column:created_by;size:255;not null"`
	LastModifiedAt time.Time `json:"lastModifiedAt" gorm:"column:last_modified_at;not null"`
	LastModifiedBy string    `json:"lastModifiedBy" gorm:"column:last_modified_by;size:255;not null"`
}

// DefaultTableName is the report table used when configuration does not override it
const DefaultTableName = "report"

// TableName specifies the table name for the Report model
func (Report) TableName() string {
	return DefaultTableName
}

// ScanTargets returns pointers to the report fields in schema registry order
func (r *Report) ScanTargets() []any {
	return []any{
		&r.ID,
		&r.Title,
		&r.Description,
		&r.CreatedAt,
		&r.CreatedBy,
		&r.LastModifiedAt,
		&r.LastModifiedBy,
	}
}

// ReportFilter narrows a report listing. Empty fields do not filter.
type ReportFilter struct {
	Title               string `query:"title"`
	DescriptionContains string `query:"description"`
}

// IsEmpty returns true if the filter matches every report
func (f ReportFilter) IsEmpty() bool {
	return f.Title == "" && f.DescriptionContains == ""
}

// Matches applies the filter to a single report: exact title, case-sensitive description substring
func (f ReportFilter) Matches(r Report) bool {
	if f.Title != "" && r.Title != f.Title {
		return false
	}
	if f.DescriptionContains != "" && !strings.Contains(r.Description, f.DescriptionContains) {
		return false
	}
	return true
}

// CreateParams carries the caller-supplied fields of a new report
type CreateParams struct {
	Title       string
	Description string
	CreatedBy   string
}

// UpdateParams carries the caller-supplied fields of a report modification
type UpdateParams struct {
	Title          string
	Description    string
	LastModifiedBy string
}

// SampleReports returns the reports the in-memory store is seeded with
func SampleReports(now time.Time) []Report {
	return []Report{
		{
			ID:             1,
			Title:          "Ruth Bader Ginsburg",
			Description:    "Report about an American lawyer and jurist who is an Associate Justice of the U.S. Supreme Court.",
			CreatedBy:      "Ruth Bader Ginsburg",
			CreatedAt:      now,
			LastModifiedAt: now,
			LastModifiedBy: "Ruth Bader Ginsburg",
		},
		{
			ID:             2,
			Title:          "My Dog Rose",
			Description:    "Report about my dog Rose who enjoys leash laws.",
			CreatedBy:      "John Mayer",
			CreatedAt:      now,
			LastModifiedAt: now,
			LastModifiedBy: "John Mayer",
		},
		{
			ID:             3,
			Title:          "Three Blind Mice",
			Description:    "Report about seeing how mice run",
			CreatedBy:      "Mickey Mouse",
			CreatedAt:      now,
			LastModifiedAt: now,
			LastModifiedBy: "Mickey Mouse",
		},
	}
}
