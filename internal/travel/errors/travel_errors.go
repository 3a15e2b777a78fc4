package travelerrors

import (
	"net/http"

	"go-payops/internal/shared/apperror"
)

var (
	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"user id is not a valid uuid",
		http.StatusBadRequest,
	)
	ErrUnknownTransportMode = apperror.New(
		apperror.CodeInvalidInput,
		"transport mode is not recognised",
		http.StatusBadRequest,
	)
	ErrInvalidKmBand = apperror.New(
		apperror.CodeInvalidInput,
		"tier min km must be below max km",
		http.StatusBadRequest,
	)
	ErrInvalidEffectiveFrom = apperror.New(
		apperror.CodeInvalidInput,
		"effective_from must be a YYYY-MM-DD date",
		http.StatusBadRequest,
	)
	ErrInvalidEffectiveTo = apperror.New(
		apperror.CodeInvalidInput,
		"effective_to must not precede effective_from",
		http.StatusBadRequest,
	)
)
