package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eleven-am/genkit/internal/infer"
	"github.com/eleven-am/genkit/internal/model"
)

func liveColumns() []model.Column {
	return []model.Column{
		{ColumnName: "notice_id", ColumnType: "int(4)", ColumnSort: 1, ColumnComment: "Notice ID", IsPk: true, IsIncrement: true},
		{ColumnName: "notice_title", ColumnType: "varchar(50)", ColumnSort: 2, ColumnComment: "Title", IsRequired: true},
		{ColumnName: "notice_type", ColumnType: "char(1)", ColumnSort: 3, ColumnComment: "Type (1 notice 2 bulletin)", IsRequired: true},
		{ColumnName: "status", ColumnType: "char(1)", ColumnSort: 4, ColumnComment: "Status"},
		{ColumnName: "create_time", ColumnType: "datetime", ColumnSort: 5, ColumnComment: "Created"},
	}
}

// persisted mimics an import followed by operator edits.
func persisted(tableID int64) []model.Column {
	cols := infer.Columns(liveColumns())
	for i := range cols {
		cols[i].ColumnID = int64(100 + i)
		cols[i].TableID = tableID
	}

	cols[1].HTMLType = model.HTMLTextarea
	cols[1].IsRequired = false
	cols[1].FieldName = "headline"
	cols[1].ColumnComment = "Operator label"

	cols[2].DictType = "sys_notice_type"
	cols[2].QueryType = model.QueryLike

	cols[4].DictType = "should_not_survive"
	cols[4].HTMLType = model.HTMLInput
	return cols
}

func byName(columns []model.Column) map[string]model.Column {
	m := make(map[string]model.Column, len(columns))
	for _, c := range columns {
		m[c.ColumnName] = c
	}
	return m
}

func TestColumnsPreservesAllowListedEdits(t *testing.T) {
	merged := byName(Columns(3, liveColumns(), persisted(3)))

	title := merged["notice_title"]
	assert.Equal(t, model.HTMLTextarea, title.HTMLType)
	assert.False(t, bool(title.IsRequired))
	assert.Equal(t, "noticeTitle", title.FieldName, "field name is not operator tunable")
	assert.Equal(t, "Title", title.ColumnComment, "comment always follows the database")

	noticeType := merged["notice_type"]
	assert.Equal(t, "sys_notice_type", noticeType.DictType)
	assert.Equal(t, model.QueryLike, noticeType.QueryType)
	assert.Equal(t, model.HTMLSelect, noticeType.HTMLType)
}

func TestColumnsDiscardsEditsOutsideAllowList(t *testing.T) {
	merged := byName(Columns(3, liveColumns(), persisted(3)))

	created := merged["create_time"]
	assert.Empty(t, created.DictType, "create_time is not a list column")
	assert.Equal(t, model.HTMLDatetime, created.HTMLType, "create_time is not a form column")

	pk := merged["notice_id"]
	assert.Equal(t, model.HTMLNumber, pk.HTMLType)
	assert.True(t, bool(pk.IsPk))
}

func TestColumnsHandlesAddedAndDroppedColumns(t *testing.T) {
	live := append(liveColumns()[:4], model.Column{ColumnName: "remark", ColumnType: "varchar(500)", ColumnSort: 6})
	merged := Columns(3, live, persisted(3))

	names := make([]string, 0, len(merged))
	for _, c := range merged {
		names = append(names, c.ColumnName)
	}
	assert.Equal(t, []string{"notice_id", "notice_title", "notice_type", "status", "remark"}, names)

	remark := byName(merged)["remark"]
	assert.Equal(t, model.HTMLTextarea, remark.HTMLType)
	assert.True(t, bool(remark.IsEdit))
}

func TestColumnsRetypedColumnTakesFreshInference(t *testing.T) {
	old := persisted(3)
	live := liveColumns()
	live[3].ColumnType = "int(1)"
	live[3].ColumnName = "status"

	status := byName(Columns(3, live, old))["status"]
	assert.Equal(t, model.TSNumber, status.TSType)
	assert.Equal(t, model.JavaInteger, status.JavaType)
	assert.Equal(t, model.HTMLRadio, status.HTMLType, "kept from the persisted column")
}

func TestColumnsResetsIdentity(t *testing.T) {
	merged := Columns(9, liveColumns(), persisted(3))
	require.NotEmpty(t, merged)
	for _, c := range merged {
		assert.Zero(t, c.ColumnID)
		assert.Equal(t, int64(9), c.TableID)
	}
}

func TestColumnsIsIdempotent(t *testing.T) {
	first := Columns(3, liveColumns(), persisted(3))
	second := Columns(3, liveColumns(), first)
	assert.Equal(t, first, second)
}

func TestColumnsWithoutHistoryEqualsInference(t *testing.T) {
	merged := Columns(3, liveColumns(), nil)
	expected := infer.Columns(liveColumns())
	for i := range expected {
		expected[i].TableID = 3
	}
	assert.Equal(t, expected, merged)
}
