package payattendanceerrors

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
	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"entry user id is not a valid uuid",
		http.StatusBadRequest,
	)
	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"entry date must be YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrUnknownStatus = apperror.New(
		apperror.CodeInvalidInput,
		"entry status must be PRESENT or ABSENT",
		http.StatusBadRequest,
	)
)
