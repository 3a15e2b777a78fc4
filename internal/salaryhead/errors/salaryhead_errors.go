package salaryheaderrors

import (
	"net/http"

	"go-payops/internal/shared/apperror"
)

var (
	ErrInvalidHeadType = apperror.New(
		apperror.CodeInvalidInput,
		"salary head type must be EARNING or DEDUCTION",
		http.StatusBadRequest,
	)
	ErrDuplicateCode = apperror.New(
		apperror.CodeConflict,
		"a salary head with this code already exists",
		http.StatusConflict,
	)
)
