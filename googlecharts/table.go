// Package googlecharts holds data structures that can be used
// by the Google Charts JavaScript library.
package googlecharts

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	errgo "gopkg.in/errgo.v1"
)

// DataTable holds the contents of a data table. When marshaled as JSON,
// it is suitable for passing to google.visualization.DataTable.
type DataTable struct {
	Cols []Column `json:"cols"`
	Rows []Row    `json:"rows"`
}

type Column struct {
	Type    DataType `json:"type"`
	Id      string   `json:"id"`
	Label   string   `json:"label,omitempty"`
	Pattern string   `json:"pattern,omitempty"`
}

type Row struct {
	Cells      []Cell                 `json:"c"`
	Properties map[string]interface{} `json:"p,omitempty"`
}

// Cell holds a single table cell. A nil Value is shown as a
// gap in the chart.
type Cell struct {
	Value      interface{}            `json:"v,omitempty"`
	Format     string                 `json:"f,omitempty"`
	Properties map[string]interface{} `json:"p,omitempty"`
}

type DataType string

const (
	TBool      DataType = "boolean"
	TNumber    DataType = "number"
	TString    DataType = "string"
	TDate      DataType = "date"
	TDatetime  DataType = "datetime"
	TTimeofday DataType = "timeofday"
)

// NewDataTable returns a new data table by taking values from x, which
// must be a slice of a struct type or pointer to struct type.
// A nil slice produces a table with columns but no rows.
//
// The fields of the struct type determine the columns in the table;
// their types determine the type of the column. Any numeric type is
// given the type "number", boolean types are "boolean", string types
// are "string". A value of type time.Time is encoded as a "datetime"
// column. A pointer to any of those types is allowed too; a nil
// pointer produces an empty cell.
//
// The id of the column is taken from the field name by default. The
// other column values can be customized by the format string stored
// under the "googlecharts" key in the struct field's tags. The format
// string gives the label of the field, possibly followed by a
// comma-separated list of options. The label may be empty to leave the
// label unspecified.
//
// The "type=" option specifies the column type. This is usually
// inferred from the field type.
//
// The "id=" option specifies the id of the column.
func NewDataTable(x interface{}) *DataTable {
	xv := reflect.ValueOf(x)
	if xv.Kind() != reflect.Slice {
		panic(errgo.Newf("argument to NewDataTable needs slice, got %v", xv.Type()))
	}
	info := mustTypeInfo(xv.Type().Elem())
	nrows := xv.Len()
	dt := DataTable{
		Cols: append([]Column(nil), info.cols...),
		Rows: make([]Row, nrows),
	}
	for i := range dt.Rows {
		dt.Rows[i] = info.row(xv.Index(i))
	}
	return &dt
}

// NewRow returns a table row holding the fields of x, which must be
// a struct or pointer to struct. The row matches the columns of a table
// created by calling NewDataTable with a slice of the same type.
func NewRow(x interface{}) Row {
	xv := reflect.ValueOf(x)
	return mustTypeInfo(xv.Type()).row(xv)
}

// AppendRow adds a row to the end of the table.
func (dt *DataTable) AppendRow(r Row) {
	dt.Rows = append(dt.Rows, r)
}

// ShiftRow removes the first row of the table.
// It reports whether there was a row to remove.
func (dt *DataTable) ShiftRow() bool {
	if len(dt.Rows) == 0 {
		return false
	}
	copy(dt.Rows, dt.Rows[1:])
	dt.Rows[len(dt.Rows)-1] = Row{}
	dt.Rows = dt.Rows[:len(dt.Rows)-1]
	return true
}

// Clone returns a deep copy of the table. Cell values are
// copied shallowly.
func (dt *DataTable) Clone() *DataTable {
	dt1 := &DataTable{
		Cols: append([]Column(nil), dt.Cols...),
		Rows: make([]Row, len(dt.Rows)),
	}
	for i, r := range dt.Rows {
		dt1.Rows[i] = Row{
			Cells:      append([]Cell(nil), r.Cells...),
			Properties: r.Properties,
		}
	}
	return dt1
}

type typeInfo struct {
	indir  bool
	cols   []Column
	fields []fieldInfo
}

func (info *typeInfo) row(xv reflect.Value) Row {
	cells := make([]Cell, len(info.cols))
	if info.indir {
		if xv.IsNil() {
			return Row{Cells: cells}
		}
		xv = xv.Elem()
	}
	for i := range cells {
		f := &info.fields[i]
		f.set(&cells[i], xv.FieldByIndex(f.index))
	}
	return Row{Cells: cells}
}

var (
	typeMutex sync.RWMutex
	typeMap   = make(map[reflect.Type]*typeInfo)
)

func mustTypeInfo(t reflect.Type) *typeInfo {
	info, err := getTypeInfo(t)
	if err != nil {
		panic(err)
	}
	return info
}

func getTypeInfo(t reflect.Type) (*typeInfo, error) {
	typeMutex.RLock()
	pt := typeMap[t]
	typeMutex.RUnlock()
	if pt != nil {
		return pt, nil
	}
	typeMutex.Lock()
	defer typeMutex.Unlock()
	if pt = typeMap[t]; pt != nil {
		// The type has been parsed after we dropped
		// the read lock, so use it.
		return pt, nil
	}
	pt, err := parseTypeInfo(t)
	if err != nil {
		return nil, errgo.Mask(err)
	}
	typeMap[t] = pt
	return pt, nil
}

func parseTypeInfo(t reflect.Type) (*typeInfo, error) {
	var info typeInfo
	if t.Kind() == reflect.Ptr {
		info.indir = true
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, errgo.Newf("table row needs struct or *struct, got %v", t)
	}
	info.fields = make([]fieldInfo, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}
		fi, err := getFieldInfo(f)
		if err != nil {
			return nil, errgo.Mask(err)
		}
		info.fields = append(info.fields, fi)
		info.cols = append(info.cols, Column{
			Id:    fi.id,
			Label: fi.label,
			Type:  fi.dtype,
		})
	}
	return &info, nil
}

var kindToDataType = map[reflect.Kind]DataType{
	reflect.Bool:    TBool,
	reflect.Int:     TNumber,
	reflect.Int8:    TNumber,
	reflect.Int16:   TNumber,
	reflect.Int32:   TNumber,
	reflect.Int64:   TNumber,
	reflect.Uint:    TNumber,
	reflect.Uint8:   TNumber,
	reflect.Uint16:  TNumber,
	reflect.Uint32:  TNumber,
	reflect.Uint64:  TNumber,
	reflect.Uintptr: TNumber,
	reflect.Float32: TNumber,
	reflect.Float64: TNumber,
	reflect.String:  TString,
}

var validTypes = map[DataType]bool{
	TBool:      true,
	TNumber:    true,
	TString:    true,
	TDate:      true,
	TDatetime:  true,
	TTimeofday: true,
}

type fieldInfo struct {
	id    string
	label string
	index []int
	dtype DataType
	set   func(cell *Cell, xv reflect.Value)
}

var timeType = reflect.TypeOf(time.Time{})

func getFieldInfo(f reflect.StructField) (fieldInfo, error) {
	ft := f.Type
	indir := ft.Kind() == reflect.Ptr
	if indir {
		ft = ft.Elem()
	}
	dt, ok := kindToDataType[ft.Kind()]
	if !ok {
		if ft != timeType {
			return fieldInfo{}, errgo.Newf("type %s not allowed for field %v", f.Type, f.Name)
		}
		dt = TDatetime
	}
	set := func(cell *Cell, xv reflect.Value) {
		cell.Value = xv.Interface()
	}
	if ft == timeType {
		set = func(cell *Cell, xv reflect.Value) {
			t := xv.Interface().(time.Time)
			cell.Value = fmt.Sprintf("Date(%d)", t.UnixNano()/1e6)
		}
	}
	info := fieldInfo{
		id:    f.Name,
		dtype: dt,
		index: f.Index,
		set:   set,
	}
	if indir {
		info.set = func(cell *Cell, xv reflect.Value) {
			if !xv.IsNil() {
				set(cell, xv.Elem())
			}
		}
	}
	tag, ok := f.Tag.Lookup("googlecharts")
	if !ok {
		return info, nil
	}
	parts := strings.Split(tag, ",")
	info.label = parts[0]
	for _, opt := range parts[1:] {
		switch {
		case strings.HasPrefix(opt, "id="):
			info.id = strings.TrimPrefix(opt, "id=")
		case strings.HasPrefix(opt, "type="):
			t := DataType(strings.TrimPrefix(opt, "type="))
			if !validTypes[t] {
				return fieldInfo{}, errgo.Newf("invalid column type %q for field %v", t, f.Name)
			}
			info.dtype = t
		default:
			return fieldInfo{}, errgo.Newf("unknown option %q for field %v", opt, f.Name)
		}
	}
	return info, nil
}
