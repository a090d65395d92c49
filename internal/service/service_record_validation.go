package service

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/MKhiriev/go-study-sync/internal/validators"
	"github.com/MKhiriev/go-study-sync/models"
)

// RecordValidationService rejects requests for unknown collections and
// documents that do not decode into a valid entity before they reach the
// wrapped service.
type RecordValidationService struct {
	inner     RecordService
	validator validators.Validator
}

func NewRecordValidationService() RecordServiceWrapper {
	return &RecordValidationService{
		validator: validators.NewEntityValidator(),
	}
}

func (v *RecordValidationService) Wrap(inner RecordService) RecordService {
	v.inner = inner
	return v
}

func (v *RecordValidationService) List(ctx context.Context, userID int64, collection string) ([]Document, error) {
	if err := checkScope(userID, collection); err != nil {
		return nil, err
	}
	return v.inner.List(ctx, userID, collection)
}

func (v *RecordValidationService) Create(ctx context.Context, userID int64, collection string, doc Document) (Document, error) {
	if err := checkScope(userID, collection); err != nil {
		return nil, err
	}

	data, _ := models.SplitDocument(doc)
	entity, err := decodeEntity(collection, data)
	if err != nil {
		return nil, err
	}
	if err = v.validator.Validate(ctx, entity); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	return v.inner.Create(ctx, userID, collection, doc)
}

// Patch validates only the fields the patch carries.
func (v *RecordValidationService) Patch(ctx context.Context, userID int64, collection, id string, patch Document) (Document, error) {
	if err := checkScope(userID, collection); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrEmptyRecordID
	}

	data, _ := models.SplitDocument(patch)
	if len(data) > 0 {
		entity, err := decodeEntity(collection, data)
		if err != nil {
			return nil, err
		}

		fields := make([]string, 0, len(data))
		for k := range data {
			fields = append(fields, k)
		}
		slices.Sort(fields)

		if err = v.validator.Validate(ctx, entity, fields...); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
		}
	}

	return v.inner.Patch(ctx, userID, collection, id, patch)
}

func (v *RecordValidationService) Delete(ctx context.Context, userID int64, collection, id string) error {
	if err := checkScope(userID, collection); err != nil {
		return err
	}
	if id == "" {
		return ErrEmptyRecordID
	}
	return v.inner.Delete(ctx, userID, collection, id)
}

func checkScope(userID int64, collection string) error {
	if userID <= 0 {
		return ErrValidationNoUserID
	}
	if !models.IsKnownCollection(collection) {
		return fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	return nil
}

// decodeEntity round-trips data through the typed entity so that wrong
// field types are rejected.
func decodeEntity(collection string, data map[string]any) (any, error) {
	entity := models.NewEntity(collection)
	if entity == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	if err = json.Unmarshal(raw, entity); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	return entity, nil
}
