package revisionerrors

import (
	"net/http"

	"go-payops/internal/shared/apperror"
)

var (
	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid user id",
		http.StatusBadRequest,
	)
	ErrInvalidEffectiveFrom = apperror.New(
		apperror.CodeInvalidInput,
		"effective_from must be a YYYY-MM-DD date",
		http.StatusBadRequest,
	)
	ErrNegativeLineAmount = apperror.New(
		apperror.CodeDataQuality,
		"revision line amounts cannot be negative",
		http.StatusBadRequest,
	)
)
