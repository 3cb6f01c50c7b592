package introspect

import (
	"database/sql"

	"github.com/eleven-am/genkit/internal/model"
)

// Filter narrows a live table listing. Name and Comment match by case-insensitive
// substring; Exclude drops exact names and ExcludePrefixes drops name prefixes.
type Filter struct {
	Name            string
	Comment         string
	Exclude         []string
	ExcludePrefixes []string
}

type tableRow struct {
	Name       string         `db:"table_name"`
	Comment    sql.NullString `db:"table_comment"`
	CreateTime sql.NullTime   `db:"create_time"`
	UpdateTime sql.NullTime   `db:"update_time"`
}

func (r tableRow) toModel() model.Table {
	return model.Table{
		TableName:    r.Name,
		TableComment: r.Comment.String,
		CreateTime:   r.CreateTime.Time,
		UpdateTime:   r.UpdateTime.Time,
	}
}

func toModels(rows []tableRow) []model.Table {
	tables := make([]model.Table, 0, len(rows))
	for _, r := range rows {
		tables = append(tables, r.toModel())
	}
	return tables
}
