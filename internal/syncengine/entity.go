package syncengine

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
)

// newEntity allocates the value a pointer entity type points to.
func newEntity[T Entity]() T {
	var zero T
	typ := reflect.TypeOf(zero)
	if typ != nil && typ.Kind() == reflect.Pointer {
		return reflect.New(typ.Elem()).Interface().(T)
	}
	return zero
}

func isNil[T Entity](v T) bool {
	if any(v) == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// cloneEntity deep-copies v through its JSON form so optimistic edits never
// touch a record a caller may still hold.
func cloneEntity[T Entity](v T) (T, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("encode entity: %w", err)
	}
	return decodeEntity[T](raw)
}

func decodeEntity[T Entity](raw []byte) (T, error) {
	out := newEntity[T]()
	if err := json.Unmarshal(raw, out); err != nil {
		var zero T
		return zero, fmt.Errorf("decode entity: %w", err)
	}
	return out, nil
}

func indexOf[T Entity](items []T, id string) int {
	return slices.IndexFunc(items, func(item T) bool {
		return item.GetRecord().ID == id
	})
}

// sortNewestFirst orders items by creation time, newest first.
func sortNewestFirst[T Entity](items []T) {
	slices.SortStableFunc(items, func(a, b T) int {
		return b.GetRecord().CreatedAt.Compare(a.GetRecord().CreatedAt)
	})
}
