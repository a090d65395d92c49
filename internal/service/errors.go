package service

import "errors"

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")
	ErrUnknownCollection   = errors.New("unknown collection")
	ErrEmptyRecordID       = errors.New("record id is required")
	ErrValidationNoUserID  = errors.New("no user ID was given")

	ErrTokenCreationFailed     = errors.New("token creation failed")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")

	ErrVersionIsNotSpecified = errors.New("app version is not specified")

	ErrFlashcardNotFound = errors.New("flashcard not found")
	ErrInvalidGrade      = errors.New("grade must be between 0 and 5")
)
