package models

// ColumnRecord is one flattened catalog entry. A record with an empty Column
// describes a table that has no columns.
type ColumnRecord struct {
	Datasource string `csv:"datasource" bson:"datasource" json:"datasource"`
	Table      string `csv:"table" bson:"table" json:"table"`
	Column     string `csv:"column,omitempty" bson:"column" json:"column"`
}
