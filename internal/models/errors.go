package models

import "errors"

// Common errors used throughout the application
var (
	ErrEventNotFound      = errors.New("the event you are looking for does not exist")
	ErrNotAuthenticated   = errors.New("user is not authenticated")
	ErrNoStagedPurchase   = errors.New("no purchase data was found for this payment")
	ErrInvalidInput       = errors.New("invalid input")
	ErrTicketTypeNotFound = errors.New("ticket type not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrPurchaseNotFound   = errors.New("purchase not found")
)
