package models

// FieldType is the declared type of a report schema field
type FieldType string

const (
	FieldInteger   FieldType = "integer"
	FieldString    FieldType = "string"
	FieldDatetime  FieldType = "datetime"
	FieldTimestamp FieldType = "timestamp"
)

// ValidationMode selects which requiredness flag applies
type ValidationMode int

const (
	ModeCreate ValidationMode = iota
	ModeModify
)

// ReportSchemaField describes one report field and its per-operation requiredness
type ReportSchemaField struct {
	Name             string
	Column           string
	Type             FieldType
	RequiredOnCreate bool
	RequiredOnModify bool
}

// RequiredFor reports whether the field must be present in the given mode
func (f ReportSchemaField) RequiredFor(mode ValidationMode) bool {
	if mode == ModeCreate {
		return f.RequiredOnCreate
	}
	return f.RequiredOnModify
}

// ReportSchema is the ordered report field registry. Order matches Report.ScanTargets.
var ReportSchema = []ReportSchemaField{
	{Name: "id", Column: "id", Type: FieldInteger},
	{Name: "title", Column: "title", Type: FieldString, RequiredOnCreate: true, RequiredOnModify: true},
	{Name: "description", Column: "description", Type: FieldString, RequiredOnCreate: true, RequiredOnModify: true},
	{Name: "createdAt", Column: "created_at", Type: FieldDatetime},
	{Name: "createdBy", Column: "created_by", Type: FieldString, RequiredOnCreate: true},
	{Name: "lastModifiedAt", Column: "last_modified_at", Type: FieldTimestamp},
	{Name: "lastModifiedBy", Column: "last_modified_by", Type: FieldString, RequiredOnModify: true},
}

// ColumnFor returns the relational column of a schema field, or "" for unknown names
func ColumnFor(name string) string {
	for _, f := range ReportSchema {
		if f.Name == name {
			return f.Column
		}
	}
	return ""
}
