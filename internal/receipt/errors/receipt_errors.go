package receipterrors

import (
	"net/http"

	"go-payops/internal/shared/apperror"
)

var (
	ErrInvalidPeriodID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid period id",
		http.StatusBadRequest,
	)
	ErrPeriodNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll period not found",
		http.StatusNotFound,
	)
	ErrSendNotAllowed = apperror.New(
		apperror.CodeInvalidState,
		"receipts can only be sent from an APPROVED, PARTIAL or FAILED period",
		http.StatusBadRequest,
	)
	ErrNothingToSend = apperror.New(
		apperror.CodeInvalidState,
		"period has no receipts matching the send filter",
		http.StatusBadRequest,
	)
	ErrReceiptNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll receipt not found",
		http.StatusNotFound,
	)
)
