package usecase

import "errors"

type DomainError struct {
	Code    string
	Message string
	Err     error

	// Preenchido quando Code é VALIDATION_ERROR.
	Fields []ValidationError
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

func domainError(code string, err error) *DomainError {
	return &DomainError{Code: code, Message: err.Error(), Err: err}
}
