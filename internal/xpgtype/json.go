package xpgtype

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

var (
	_ sql.Scanner   = (*JSON[any])(nil)
	_ driver.Valuer = (*JSON[any])(nil)
)

// JSON maps a Go value onto a jsonb column. A NULL column scans into the zero
// value of T.
type JSON[T any] struct {
	V T
}

func NewJSON[T any](v T) JSON[T] {
	return JSON[T]{V: v}
}

func (j JSON[T]) Value() (driver.Value, error) {
	return json.Marshal(j.V)
}

func (j *JSON[T]) Scan(src any) error {
	if src == nil {
		var zero T
		j.V = zero
		return nil
	}

	data, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into JSON", src)
	}
	return json.Unmarshal(data, &j.V)
}
