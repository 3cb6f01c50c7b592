// Package generator orchestrates import, sync and code generation for persisted tables.
package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/eleven-am/genkit/internal/archive"
	"github.com/eleven-am/genkit/internal/infer"
	"github.com/eleven-am/genkit/internal/introspect"
	"github.com/eleven-am/genkit/internal/logger"
	"github.com/eleven-am/genkit/internal/merge"
	"github.com/eleven-am/genkit/internal/model"
	"github.com/eleven-am/genkit/internal/render"
	"github.com/eleven-am/genkit/internal/store"
)

// ErrStructureNotFound is returned when a live table has no columns.
var ErrStructureNotFound = errors.New("table structure not found")

// DefaultWorkers bounds concurrent introspection during import.
const DefaultWorkers = 4

// SchemaSource reads live table definitions.
type SchemaSource interface {
	ListTables(ctx context.Context, f introspect.Filter) ([]model.Table, error)
	TablesByNames(ctx context.Context, names []string) ([]model.Table, error)
	ColumnsByTable(ctx context.Context, tableName string) ([]model.Column, error)
}

// Store persists generation tables.
type Store interface {
	ListTables(ctx context.Context, q store.ListQuery) (*store.Page, error)
	GetTable(ctx context.Context, id int64) (*model.Table, error)
	GetTableByName(ctx context.Context, name string) (*model.Table, error)
	TableNames(ctx context.Context) ([]string, error)
	CreateTables(ctx context.Context, tables []model.Table) ([]model.Table, error)
	UpdateTable(ctx context.Context, t model.Table) error
	DeleteTables(ctx context.Context, ids ...int64) error
	ReplaceColumns(ctx context.Context, tableID int64, columns []model.Column) error
}

// Options configures a Service.
type Options struct {
	Defaults        infer.Defaults
	ExcludePrefixes []string
	Workers         int
}

// Service runs generation operations against a schema source and a store.
type Service struct {
	source    SchemaSource
	store     Store
	templates *render.Templates
	renderer  *render.Renderer
	opts      Options
	log       logger.Logger
}

// NewService creates a service. A nil templates uses the embedded set.
func NewService(source SchemaSource, st Store, templates *render.Templates, opts Options) *Service {
	if templates == nil {
		templates = render.NewTemplates("")
	}
	if opts.Workers < 1 {
		opts.Workers = DefaultWorkers
	}

	return &Service{
		source:    source,
		store:     st,
		templates: templates,
		renderer:  render.NewRenderer(),
		opts:      opts,
		log:       logger.Generator(),
	}
}

// List returns a page of imported tables.
func (s *Service) List(ctx context.Context, q store.ListQuery) (*store.Page, error) {
	return s.store.ListTables(ctx, q)
}

// Info returns an imported table with its columns.
func (s *Service) Info(ctx context.Context, id int64) (*model.Table, error) {
	return s.store.GetTable(ctx, id)
}

// Update validates and saves table metadata together with the editable column fields.
func (s *Service) Update(ctx context.Context, t model.Table) error {
	if err := t.Validate(); err != nil {
		return err
	}

	t.UpdateBy = Operator(ctx)
	if err := s.store.UpdateTable(ctx, t); err != nil {
		return fmt.Errorf("update %s: %w", t.TableName, err)
	}

	s.log.Info("Updated table", "table", t.TableName, "operator", t.UpdateBy)
	return nil
}

// Delete removes imported tables and their columns.
func (s *Service) Delete(ctx context.Context, ids ...int64) error {
	if err := s.store.DeleteTables(ctx, ids...); err != nil {
		return err
	}

	s.log.Info("Deleted tables", "ids", ids)
	return nil
}

// DBList returns live tables that are not yet imported. Configured prefixes are always
// excluded.
func (s *Service) DBList(ctx context.Context, f introspect.Filter) ([]model.Table, error) {
	imported, err := s.store.TableNames(ctx)
	if err != nil {
		return nil, err
	}

	f.Exclude = append(append([]string{}, f.Exclude...), imported...)
	f.ExcludePrefixes = append(append([]string{}, f.ExcludePrefixes...), s.opts.ExcludePrefixes...)

	tables, err := s.source.ListTables(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list live tables: %w", err)
	}
	return tables, nil
}

// Import introspects the named tables, infers their metadata and persists them in one
// transaction. A missing table or a table without columns fails the whole import.
func (s *Service) Import(ctx context.Context, names ...string) ([]model.Table, error) {
	if len(names) == 0 {
		return nil, errors.New("no tables to import")
	}

	live, err := s.source.TablesByNames(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("read live tables: %w", err)
	}

	found := make(map[string]bool, len(live))
	for _, t := range live {
		found[t.TableName] = true
	}
	for _, name := range names {
		if !found[name] {
			return nil, fmt.Errorf("import %s: %w", name, ErrStructureNotFound)
		}
	}

	operator := Operator(ctx)
	tables := make([]model.Table, len(live))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, t := range live {
		g.Go(func() error {
			columns, err := s.source.ColumnsByTable(gctx, t.TableName)
			if err != nil {
				return fmt.Errorf("read columns of %s: %w", t.TableName, err)
			}
			if len(columns) == 0 {
				return fmt.Errorf("import %s: %w", t.TableName, ErrStructureNotFound)
			}

			table := infer.Table(t.TableName, t.TableComment, s.opts.Defaults)
			table.CreateBy = operator
			table.Columns = infer.Columns(columns)
			for j := range table.Columns {
				table.Columns[j].CreateBy = operator
			}

			tables[i] = table
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	created, err := s.store.CreateTables(ctx, tables)
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}

	s.log.Info("Imported tables", "count", len(created), "operator", operator)
	return created, nil
}

// Sync reconciles the persisted columns of a table with its live structure, keeping the
// operator's edits. The column set is replaced atomically.
func (s *Service) Sync(ctx context.Context, tableName string) error {
	table, err := s.store.GetTableByName(ctx, tableName)
	if err != nil {
		return fmt.Errorf("sync %s: %w", tableName, err)
	}

	live, err := s.source.ColumnsByTable(ctx, tableName)
	if err != nil {
		return fmt.Errorf("read columns of %s: %w", tableName, err)
	}
	if len(live) == 0 {
		return fmt.Errorf("sync %s: %w", tableName, ErrStructureNotFound)
	}

	operator := Operator(ctx)
	for i := range live {
		live[i].CreateBy = operator
	}

	merged := merge.Columns(table.TableID, live, table.Columns)
	if err := s.store.ReplaceColumns(ctx, table.TableID, merged); err != nil {
		return fmt.Errorf("sync %s: %w", tableName, err)
	}

	s.log.Info("Synchronized table", "table", tableName, "columns", len(merged))
	return nil
}

// Preview renders every template of the table's category.
func (s *Service) Preview(ctx context.Context, tableName string) ([]render.File, error) {
	table, err := s.store.GetTableByName(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("preview %s: %w", tableName, err)
	}

	files, err := s.renderer.RenderTable(*table, s.templates)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", tableName, err)
	}

	s.log.Debug("Rendered table", "table", tableName, "files", len(files))
	return files, nil
}

// Download writes the generated files of one table to w as a zip archive.
func (s *Service) Download(ctx context.Context, tableName string, w io.Writer) error {
	return s.BatchDownload(ctx, w, tableName)
}

// BatchDownload writes the generated files of several tables to one zip archive. Entries
// are named <table>/<path>.
func (s *Service) BatchDownload(ctx context.Context, w io.Writer, tableNames ...string) error {
	now := time.Now()

	var entries []archive.File
	for _, name := range tableNames {
		files, err := s.Preview(ctx, name)
		if err != nil {
			return err
		}
		for _, f := range files {
			entries = append(entries, archive.File{
				Name:     path.Join(name, f.Path),
				Content:  []byte(f.Content),
				Modified: now,
			})
		}
	}

	if err := archive.Write(w, entries); err != nil {
		return fmt.Errorf("package %v: %w", tableNames, err)
	}

	s.log.Info("Packaged tables", "tables", tableNames, "files", len(entries))
	return nil
}
