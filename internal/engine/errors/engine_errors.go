package engineerrors

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
	ErrRecalculateNotAllowed = apperror.New(
		apperror.CodeInvalidState,
		"period can only be recalculated while status is DRAFT or CALCULATED",
		http.StatusBadRequest,
	)
	ErrRecalculateInProgress = apperror.New(
		apperror.CodeConflict,
		"a recalculation for this period is already running",
		http.StatusConflict,
	)
	ErrNoComputedValues = apperror.New(
		apperror.CodeNotFound,
		"period has no computed values yet",
		http.StatusNotFound,
	)
)
