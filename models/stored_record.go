package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// SystemFields are document keys owned by the server. They are never stored
// inside Data.
var SystemFields = []string{"id", "user_id", "created_at", "updated_at"}

// StoredRecord is one server-side row. Data holds every entity field except
// the system fields.
type StoredRecord struct {
	ID         string
	Collection string
	UserID     int64
	Data       json.RawMessage
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Document flattens the row into the JSON object served to clients.
func (r StoredRecord) Document() (map[string]any, error) {
	doc := make(map[string]any)
	if len(r.Data) > 0 {
		if err := json.Unmarshal(r.Data, &doc); err != nil {
			return nil, fmt.Errorf("decode record data: %w", err)
		}
	}

	doc["id"] = r.ID
	doc["user_id"] = r.UserID
	doc["created_at"] = r.CreatedAt.UTC()
	doc["updated_at"] = r.UpdatedAt.UTC()

	return doc, nil
}

// SplitDocument separates a client document into its data part and the
// system fields it carried.
func SplitDocument(doc map[string]any) (data map[string]any, system map[string]any) {
	data = make(map[string]any, len(doc))
	system = make(map[string]any, len(SystemFields))
	for k, v := range doc {
		data[k] = v
	}
	for _, k := range SystemFields {
		if v, ok := data[k]; ok {
			system[k] = v
			delete(data, k)
		}
	}
	return data, system
}
