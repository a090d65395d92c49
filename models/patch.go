package models

import (
	"encoding/json"
	"fmt"
)

// Patch is a partial entity keyed by JSON field names.
type Patch map[string]any

// ApplyTo merges the patch into v, which must be a pointer to an entity.
// Fields not present in the patch are left untouched.
func (p Patch) ApplyTo(v any) error {
	if len(p) == 0 {
		return nil
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal patch: %w", err)
	}
	if err = json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("apply patch: %w", err)
	}

	return nil
}

// Without returns a copy of the patch with the given keys removed.
func (p Patch) Without(keys ...string) Patch {
	out := make(Patch, len(p))
	for k, v := range p {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}
