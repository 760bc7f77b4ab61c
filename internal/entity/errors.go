package entity

import "errors"

var (
	ErrLeadNotFound        = errors.New("lead not found")
	ErrMemberNotFound      = errors.New("team member not found")
	ErrSellerNotFound      = errors.New("seller not found")
	ErrClassNotFound       = errors.New("class not found")
	ErrKnowledgeNotFound   = errors.New("knowledge item not found")
	ErrSupplierNotFound    = errors.New("supplier not found")
	ErrInvalidStatus       = errors.New("invalid lead status")
	ErrObservationRequired = errors.New("observation is required when leaving NOVO")
	ErrSaleDataRequired    = errors.New("sale data is required")
	ErrInvalidDownPayment  = errors.New("down payment must be positive and not exceed the sale value")
	ErrNoDownPayment       = errors.New("lead has no open down payment")
	ErrDownPaymentOpen     = errors.New("lead already has an open down payment")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrDownPaymentState    = errors.New("down payment fields are inconsistent")
	ErrNothingToPay        = errors.New("no open commission for seller")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrEmailTaken          = errors.New("email already registered")
	ErrNoSyncConfig        = errors.New("no previous sync configuration")
	ErrNoSyncURL           = errors.New("item has no sync url")
)
