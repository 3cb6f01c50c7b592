// Package model holds the persisted description of a table targeted for code generation.
package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// HTMLType is the UI widget assigned to a column.
type HTMLType string

const (
	HTMLInput    HTMLType = "input"
	HTMLNumber   HTMLType = "number"
	HTMLTextarea HTMLType = "textarea"
	HTMLSelect   HTMLType = "select"
	HTMLRadio    HTMLType = "radio"
	HTMLCheckbox HTMLType = "checkbox"
	HTMLDatetime HTMLType = "datetime"
	HTMLUpload   HTMLType = "upload"
	HTMLEditor   HTMLType = "editor"
)

// QueryType is how a generated search field compares values.
type QueryType string

const (
	QueryEQ   QueryType = "EQ"
	QueryLike QueryType = "LIKE"
)

// TS types emitted for the front-end stack.
const (
	TSString  = "string"
	TSNumber  = "number"
	TSUnknown = "unknown"
)

// Java types emitted for the typed backend stack.
const (
	JavaString     = "String"
	JavaInteger    = "Integer"
	JavaLong       = "Long"
	JavaDouble     = "Double"
	JavaBigDecimal = "BigDecimal"
	JavaDate       = "Date"
)

// Table is one generation target. It owns its Columns; deleting a table deletes them.
type Table struct {
	TableID          int64     `db:"table_id" json:"tableId" yaml:"tableId"`
	TableName        string    `db:"table_name" json:"tableName" yaml:"tableName" validate:"required,max=100"`
	TableComment     string    `db:"table_comment" json:"tableComment" yaml:"tableComment" validate:"required,max=100"`
	SubTableName     string    `db:"sub_table_name" json:"subTableName,omitempty" yaml:"subTableName,omitempty" validate:"max=100"`
	SubTableFkName   string    `db:"sub_table_fk_name" json:"subTableFkName,omitempty" yaml:"subTableFkName,omitempty" validate:"max=100"`
	ClassName        string    `db:"class_name" json:"className" yaml:"className" validate:"required,max=100"`
	TemplateCategory string    `db:"template_category" json:"templateCategory" yaml:"templateCategory" validate:"max=20"`
	ModuleName       string    `db:"module_name" json:"moduleName" yaml:"moduleName" validate:"required,max=100"`
	BusinessName     string    `db:"business_name" json:"businessName" yaml:"businessName" validate:"required,max=100"`
	FunctionName     string    `db:"function_name" json:"functionName" yaml:"functionName" validate:"required,max=100"`
	FunctionAuthor   string    `db:"function_author" json:"functionAuthor" yaml:"functionAuthor" validate:"required,max=100"`
	Remark           string    `db:"remark" json:"remark,omitempty" yaml:"remark,omitempty" validate:"max=500"`
	CreateBy         string    `db:"create_by" json:"createBy,omitempty" yaml:"createBy,omitempty"`
	CreateTime       time.Time `db:"create_time" json:"createTime" yaml:"createTime"`
	UpdateBy         string    `db:"update_by" json:"updateBy,omitempty" yaml:"updateBy,omitempty"`
	UpdateTime       time.Time `db:"update_time" json:"updateTime" yaml:"updateTime"`

	Columns []Column `db:"-" json:"columns" yaml:"columns" validate:"required,min=1,dive"`
}

// Column is one database column of the owning table.
//
// ColumnID is not stable: sync deletes and reinserts the whole column set, so anything
// holding a ColumnID across a sync holds a dangling reference.
type Column struct {
	ColumnID      int64     `db:"column_id" json:"columnId" yaml:"columnId"`
	TableID       int64     `db:"table_id" json:"tableId" yaml:"tableId"`
	ColumnName    string    `db:"column_name" json:"columnName" yaml:"columnName" validate:"required,max=100"`
	ColumnType    string    `db:"column_type" json:"columnType" yaml:"columnType" validate:"required,max=100"`
	ColumnSort    int       `db:"column_sort" json:"columnSort" yaml:"columnSort"`
	ColumnComment string    `db:"column_comment" json:"columnComment" yaml:"columnComment" validate:"max=500"`
	IsPk          Flag      `db:"is_pk" json:"isPk" yaml:"isPk"`
	IsIncrement   Flag      `db:"is_increment" json:"isIncrement" yaml:"isIncrement"`
	IsRequired    Flag      `db:"is_required" json:"isRequired" yaml:"isRequired"`
	IsInsert      Flag      `db:"is_insert" json:"isInsert" yaml:"isInsert"`
	IsEdit        Flag      `db:"is_edit" json:"isEdit" yaml:"isEdit"`
	IsList        Flag      `db:"is_list" json:"isList" yaml:"isList"`
	IsQuery       Flag      `db:"is_query" json:"isQuery" yaml:"isQuery"`
	FieldName     string    `db:"field_name" json:"fieldName" yaml:"fieldName" validate:"required,max=100"`
	TSType        string    `db:"tslang_type" json:"tslangType" yaml:"tslangType" validate:"max=100"`
	JavaType      string    `db:"javalang_type" json:"javalangType" yaml:"javalangType" validate:"max=100"`
	QueryType     QueryType `db:"query_type" json:"queryType" yaml:"queryType" validate:"max=100"`
	HTMLType      HTMLType  `db:"html_type" json:"htmlType" yaml:"htmlType" validate:"max=100"`
	DictType      string    `db:"dict_type" json:"dictType,omitempty" yaml:"dictType,omitempty" validate:"max=100"`
	CreateBy      string    `db:"create_by" json:"createBy,omitempty" yaml:"createBy,omitempty"`
}

// ValidationError reports which fields of a table failed validation.
type ValidationError struct {
	Fields []string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid table: %s", strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

var validate = validator.New()

// Validate checks the table and its columns before they are persisted.
func (t *Table) Validate() error {
	err := validate.Struct(t)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
	}
	return &ValidationError{Fields: fields, Err: err}
}

// SortColumns orders columns by ColumnSort, keeping the input order for ties.
func SortColumns(columns []Column) {
	sort.SliceStable(columns, func(i, j int) bool {
		return columns[i].ColumnSort < columns[j].ColumnSort
	})
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	cp := t
	cp.Columns = append([]Column(nil), t.Columns...)
	return cp
}
