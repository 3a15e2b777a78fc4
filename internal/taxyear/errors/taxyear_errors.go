package taxyearerrors

import (
	"net/http"

	"go-payops/internal/shared/apperror"
)

var (
	ErrInvalidEffectiveRange = apperror.New(
		apperror.CodeInvalidInput,
		"effective dates must be YYYY-MM-DD and effective_to must not precede effective_from",
		http.StatusBadRequest,
	)
	ErrNoBrackets = apperror.New(
		apperror.CodeConfigurationGap,
		"a financial year needs at least one tax bracket",
		http.StatusBadRequest,
	)
	ErrInvalidBracketOrder = apperror.New(
		apperror.CodeConfigurationGap,
		"tax brackets must be contiguous ascending slabs with the open cap last",
		http.StatusBadRequest,
	)
)
