package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONList stores a slice as a JSON array in a text/CLOB column.
type JSONList[T any] []T

// Value implements the driver.Valuer interface. nil is stored as "[]".
func (l JSONList[T]) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]T(l))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the sql.Scanner interface. NULL, "" and "null" scan as empty.
func (l *JSONList[T]) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*l = JSONList[T]{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("JSONList Scan: unsupported type %T", value)
	}

	if len(raw) == 0 || string(raw) == "null" {
		*l = JSONList[T]{}
		return nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return err
	}
	*l = items
	return nil
}
