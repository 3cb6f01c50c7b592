// Package merge reconciles a freshly introspected column set with the persisted one.
package merge

import (
	"github.com/eleven-am/genkit/internal/infer"
	"github.com/eleven-am/genkit/internal/model"
)

// Columns infers every live column and carries operator choices over from the persisted
// column of the same name:
//
//   - list columns keep DictType and QueryType;
//   - non-PK form columns (edit or insert) keep HTMLType and IsRequired.
//
// Every other field takes the fresh value. Persisted columns with no live counterpart are
// dropped. The result replaces the persisted set in full and carries no ColumnIDs.
func Columns(tableID int64, live, persisted []model.Column) []model.Column {
	old := make(map[string]model.Column, len(persisted))
	for _, c := range persisted {
		old[c.ColumnName] = c
	}

	out := make([]model.Column, 0, len(live))
	for _, raw := range live {
		column := infer.Column(raw)
		column.ColumnID = 0
		column.TableID = tableID

		prev, ok := old[column.ColumnName]
		if !ok {
			out = append(out, column)
			continue
		}

		if column.IsList {
			column.DictType = prev.DictType
			column.QueryType = prev.QueryType
		}

		if !column.IsPk && (column.IsEdit || column.IsInsert) {
			column.HTMLType = prev.HTMLType
			column.IsRequired = prev.IsRequired
		}

		out = append(out, column)
	}

	return out
}
