package setting

import (
	"time"
)

// ValueType is the format a setting row declares for its value. Values are
// decoded by key; a declared type that disagrees with the key is reported.
type ValueType string

const (
	ValueTypeString  ValueType = "string"
	ValueTypeInt     ValueType = "int"
	ValueTypeDecimal ValueType = "decimal"
	ValueTypeBool    ValueType = "bool"
	ValueTypeJSON    ValueType = "json"
)

// Setting is a key/value configuration row. At most one active row exists per key.
type Setting struct {
	ID        string
	Key       string
	Value     string
	ValueType ValueType
	Category  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TypeMismatch reports whether the row declares a type other than the one its
// key is decoded as. Unknown keys never mismatch.
func (s Setting) TypeMismatch() bool {
	expected, ok := ExpectedType(s.Key)
	return ok && s.ValueType != "" && s.ValueType != expected
}
