package perioderrors

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
	ErrInvalidPeriodKey = apperror.New(
		apperror.CodeInvalidInput,
		"invalid period key, expected YYYY-MM",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrPeriodNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll period not found",
		http.StatusNotFound,
	)
	ErrPeriodExists = apperror.New(
		apperror.CodeConflict,
		"a payroll period already exists for this month",
		http.StatusConflict,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"invalid period status transition",
		http.StatusBadRequest,
	)
	ErrApproveOnlyCalculated = apperror.New(
		apperror.CodeInvalidState,
		"period can only be approved from CALCULATED",
		http.StatusBadRequest,
	)
	ErrPeriodLocked = apperror.New(
		apperror.CodeInvalidState,
		"period is locked and rejects input mutation",
		http.StatusConflict,
	)
	ErrCarryForwardSourceEmpty = apperror.New(
		apperror.CodeInvalidState,
		"source period has no input values to carry forward",
		http.StatusBadRequest,
	)
)
