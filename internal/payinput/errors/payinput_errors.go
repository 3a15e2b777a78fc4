package payinputerrors

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
	ErrPeriodLocked = apperror.New(
		apperror.CodeInvalidState,
		"period is locked and rejects input mutation",
		http.StatusConflict,
	)
	ErrUnknownSourceMethod = apperror.New(
		apperror.CodeInvalidInput,
		"unknown source method",
		http.StatusBadRequest,
	)
	ErrNegativeExpense = apperror.New(
		apperror.CodeInvalidInput,
		"expense amounts cannot be negative",
		http.StatusBadRequest,
	)
)
