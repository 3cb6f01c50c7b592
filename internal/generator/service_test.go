package generator

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eleven-am/genkit/internal/infer"
	"github.com/eleven-am/genkit/internal/introspect"
	"github.com/eleven-am/genkit/internal/model"
	"github.com/eleven-am/genkit/internal/store"
	gentest "github.com/eleven-am/genkit/internal/testing"
)

type fixture struct {
	service *Service
	source  *gentest.Source
	store   *gentest.TestStore
	ctx     context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	source := gentest.SampleSource()
	st := gentest.NewTestStore(t)
	service := NewService(source, st, nil, Options{
		Defaults:        infer.Defaults{Module: "monitor", Author: "ops"},
		ExcludePrefixes: []string{"gen_"},
		Workers:         2,
	})

	return &fixture{
		service: service,
		source:  source,
		store:   st,
		ctx:     WithOperator(context.Background(), "admin"),
	}
}

func (f *fixture) importJobLog(t *testing.T) model.Table {
	t.Helper()

	created, err := f.service.Import(f.ctx, "sys_job_log")
	require.NoError(t, err)
	require.Len(t, created, 1)
	return created[0]
}

func TestImportJobLog(t *testing.T) {
	f := newFixture(t)
	table := f.importJobLog(t)

	assert.NotZero(t, table.TableID)
	assert.Equal(t, "sys_job_log", table.TableName)
	assert.Equal(t, "SysJobLog", table.ClassName)
	assert.Equal(t, "log", table.BusinessName)
	assert.Equal(t, "Scheduled task log", table.FunctionName)
	assert.Equal(t, "monitor", table.ModuleName)
	assert.Equal(t, "ops", table.FunctionAuthor)
	assert.Equal(t, infer.DefaultCategory, table.TemplateCategory)
	assert.Equal(t, "admin", table.CreateBy)

	require.Len(t, table.Columns, 8)
	assert.Equal(t, gentest.ColumnNames(gentest.JobLogColumns()), gentest.ColumnNames(table.Columns))

	pk := gentest.FindColumn(table.Columns, "job_log_id")
	assert.True(t, bool(pk.IsPk))
	assert.False(t, bool(pk.IsList))
	assert.Equal(t, model.JavaLong, pk.JavaType)
	assert.Equal(t, "jobLogId", pk.FieldName)

	jobName := gentest.FindColumn(table.Columns, "job_name")
	assert.Equal(t, model.QueryLike, jobName.QueryType)
	assert.Equal(t, model.HTMLInput, jobName.HTMLType)
	assert.True(t, bool(jobName.IsRequired))

	assert.Equal(t, model.HTMLTextarea, gentest.FindColumn(table.Columns, "invoke_target").HTMLType)
	assert.Equal(t, model.HTMLTextarea, gentest.FindColumn(table.Columns, "exception_info").HTMLType)
	assert.Equal(t, model.HTMLRadio, gentest.FindColumn(table.Columns, "status").HTMLType)

	created := gentest.FindColumn(table.Columns, "create_time")
	assert.Equal(t, model.HTMLDatetime, created.HTMLType)
	assert.False(t, bool(created.IsEdit))
	assert.False(t, bool(created.IsList))

	for _, c := range table.Columns {
		assert.Equal(t, "admin", c.CreateBy, c.ColumnName)
		assert.Equal(t, table.TableID, c.TableID, c.ColumnName)
	}

	assert.True(t, f.store.TableExists("sys_job_log"))
}

func TestImportSeveralTables(t *testing.T) {
	f := newFixture(t)

	created, err := f.service.Import(f.ctx, "sys_job_log", "sys_notice")
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "sys_job_log", created[0].TableName)
	assert.Equal(t, "sys_notice", created[1].TableName)
	assert.Equal(t, model.HTMLEditor, gentest.FindColumn(created[1].Columns, "notice_content").HTMLType)
	assert.Equal(t, model.HTMLSelect, gentest.FindColumn(created[1].Columns, "notice_type").HTMLType)
}

func TestImportFailsWithoutStructure(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Import(f.ctx, "sys_job_log", "sys_empty")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStructureNotFound)
	assert.Contains(t, err.Error(), "sys_empty")

	_, err = f.service.Import(f.ctx, "sys_missing")
	assert.ErrorIs(t, err, ErrStructureNotFound)

	assert.False(t, f.store.TableExists("sys_job_log"), "nothing is persisted")
}

func TestImportTwiceIsDuplicate(t *testing.T) {
	f := newFixture(t)
	f.importJobLog(t)

	_, err := f.service.Import(f.ctx, "sys_job_log")
	assert.ErrorIs(t, err, store.ErrDuplicateKey)
}

func TestImportPropagatesSourceErrors(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("connection refused")
	f.source.Err = boom

	_, err := f.service.Import(f.ctx, "sys_job_log")
	assert.ErrorIs(t, err, boom)

	_, err = f.service.Import(f.ctx)
	assert.Error(t, err)
}

func TestDBListExcludesImportedAndPrefixedTables(t *testing.T) {
	f := newFixture(t)

	tables, err := f.service.DBList(f.ctx, introspect.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"sys_empty", "sys_job_log", "sys_notice"}, names(tables))

	_, err = f.service.Import(f.ctx, "sys_notice")
	require.NoError(t, err)

	tables, err = f.service.DBList(f.ctx, introspect.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"sys_empty", "sys_job_log"}, names(tables))

	tables, err = f.service.DBList(f.ctx, introspect.Filter{Comment: "task"})
	require.NoError(t, err)
	assert.Equal(t, []string{"sys_job_log"}, names(tables))
}

func TestSyncKeepsOperatorEdits(t *testing.T) {
	f := newFixture(t)
	table := f.importJobLog(t)

	for i := range table.Columns {
		switch table.Columns[i].ColumnName {
		case "job_name":
			table.Columns[i].HTMLType = model.HTMLTextarea
			table.Columns[i].IsRequired = false
			table.Columns[i].QueryType = model.QueryEQ
		case "status":
			table.Columns[i].DictType = "sys_common_status"
			table.Columns[i].HTMLType = model.HTMLSelect
		}
	}
	require.NoError(t, f.service.Update(f.ctx, table))

	live := gentest.JobLogColumns()
	live = append(live[:4], live[5:]...)
	live = append(live, model.Column{ColumnName: "job_duration", ColumnType: "int(11)", ColumnSort: 9, ColumnComment: "Duration"})
	f.source.SetColumns("sys_job_log", live...)

	require.NoError(t, f.service.Sync(WithOperator(context.Background(), "syncer"), "sys_job_log"))

	synced, err := f.service.Info(f.ctx, table.TableID)
	require.NoError(t, err)
	assert.Equal(t, gentest.ColumnNames(live), gentest.ColumnNames(synced.Columns))

	jobName := gentest.FindColumn(synced.Columns, "job_name")
	assert.Equal(t, model.HTMLTextarea, jobName.HTMLType)
	assert.False(t, bool(jobName.IsRequired))
	assert.Equal(t, model.QueryEQ, jobName.QueryType)
	assert.Equal(t, "syncer", jobName.CreateBy)

	status := gentest.FindColumn(synced.Columns, "status")
	assert.Equal(t, "sys_common_status", status.DictType)
	assert.Equal(t, model.HTMLSelect, status.HTMLType)

	duration := gentest.FindColumn(synced.Columns, "job_duration")
	assert.Equal(t, model.JavaLong, duration.JavaType)
	assert.Equal(t, model.HTMLNumber, duration.HTMLType)
}

func TestSyncFailsWithoutStructure(t *testing.T) {
	f := newFixture(t)
	table := f.importJobLog(t)

	f.source.SetColumns("sys_job_log")

	err := f.service.Sync(f.ctx, "sys_job_log")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStructureNotFound)
	assert.Equal(t, 8, f.store.ColumnCount(table.TableID), "persisted columns are untouched")
}

func TestSyncUnknownTable(t *testing.T) {
	f := newFixture(t)

	err := f.service.Sync(f.ctx, "sys_job_log")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSyncIsIdempotent(t *testing.T) {
	f := newFixture(t)
	table := f.importJobLog(t)

	require.NoError(t, f.service.Sync(f.ctx, "sys_job_log"))
	first, err := f.service.Info(f.ctx, table.TableID)
	require.NoError(t, err)

	require.NoError(t, f.service.Sync(f.ctx, "sys_job_log"))
	second, err := f.service.Info(f.ctx, table.TableID)
	require.NoError(t, err)

	assert.Equal(t, withoutIDs(first.Columns), withoutIDs(second.Columns))
	assert.Equal(t, withoutIDs(table.Columns), withoutIDs(second.Columns))
}

func TestUpdateValidates(t *testing.T) {
	f := newFixture(t)
	table := f.importJobLog(t)

	table.FunctionName = ""
	err := f.service.Update(f.ctx, table)
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)

	table.FunctionName = "Job log"
	require.NoError(t, f.service.Update(WithOperator(context.Background(), "editor"), table))

	saved, err := f.service.Info(f.ctx, table.TableID)
	require.NoError(t, err)
	assert.Equal(t, "Job log", saved.FunctionName)
	assert.Equal(t, "editor", saved.UpdateBy)
	assert.Equal(t, "admin", saved.CreateBy)
}

func TestListAndDelete(t *testing.T) {
	f := newFixture(t)
	created, err := f.service.Import(f.ctx, "sys_job_log", "sys_notice")
	require.NoError(t, err)

	page, err := f.service.List(f.ctx, store.ListQuery{TableName: "notice"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	require.NoError(t, f.service.Delete(f.ctx, created[0].TableID, created[1].TableID))
	assert.Zero(t, f.store.ColumnCount(created[0].TableID))

	page, err = f.service.List(f.ctx, store.ListQuery{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestPreview(t *testing.T) {
	f := newFixture(t)
	f.importJobLog(t)

	files, err := f.service.Preview(f.ctx, "sys_job_log")
	require.NoError(t, err)

	paths := make([]string, 0, len(files))
	content := make(map[string]string, len(files))
	for _, file := range files {
		paths = append(paths, file.Path)
		content[file.Path] = file.Content
	}
	assert.Equal(t, []string{
		"nest/log.module.ts",
		"nest/log.controller.ts",
		"nest/log.service.ts",
		"nest/dto/log.dto.ts",
		"nest/entities/sys-job-log.entity.ts",
		"nest/log.mapper.ts",
		"nest/log.mapper.xml",
		"react/index.tsx",
		"react/components/UpdateForm.tsx",
		"react/apis/index.ts",
		"react/apis/model.ts",
	}, paths)

	out := gentest.NewAssertOutput(t)
	out.Contains(content["nest/log.controller.ts"], "@Controller('logs')")
	out.Contains(content["nest/entities/sys-job-log.entity.ts"], "export class SysJobLog")
	for path, body := range content {
		t.Run(path, func(t *testing.T) {
			gentest.NewAssertOutput(t).NoTemplateResidue(body)
		})
	}

	_, err = f.service.Preview(f.ctx, "sys_notice")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPreviewIsReadOnly(t *testing.T) {
	f := newFixture(t)
	table := f.importJobLog(t)

	_, err := f.service.Preview(f.ctx, "sys_job_log")
	require.NoError(t, err)

	after, err := f.service.Info(f.ctx, table.TableID)
	require.NoError(t, err)
	assert.Equal(t, table.Columns, after.Columns)
}

func TestDownload(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.Import(f.ctx, "sys_job_log", "sys_notice")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.service.Download(f.ctx, "sys_job_log", &buf))

	entries := zipEntries(t, buf.Bytes())
	assert.Len(t, entries, 11)
	assert.Contains(t, entries, "sys_job_log/nest/log.controller.ts")
	assert.Contains(t, entries, "sys_job_log/react/apis/model.ts")

	buf.Reset()
	require.NoError(t, f.service.BatchDownload(f.ctx, &buf, "sys_job_log", "sys_notice"))
	entries = zipEntries(t, buf.Bytes())
	assert.Len(t, entries, 22)
	assert.Contains(t, entries, "sys_notice/nest/entities/sys-notice.entity.ts")

	buf.Reset()
	err = f.service.Download(f.ctx, "sys_missing", &buf)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestOperator(t *testing.T) {
	assert.Empty(t, Operator(context.Background()))
	assert.Equal(t, "admin", Operator(WithOperator(context.Background(), "admin")))
}

func names(tables []model.Table) []string {
	out := make([]string, 0, len(tables))
	for _, t := range tables {
		out = append(out, t.TableName)
	}
	return out
}

func withoutIDs(columns []model.Column) []model.Column {
	out := make([]model.Column, len(columns))
	for i, c := range columns {
		c.ColumnID = 0
		out[i] = c
	}
	return out
}

func zipEntries(t *testing.T, data []byte) map[string]string {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	out := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		out[f.Name] = string(body)
	}
	return out
}
