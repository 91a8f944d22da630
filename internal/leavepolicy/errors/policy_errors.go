package errors

import (
	"net/http"

	"github.com/RushikJoshi/GT-HRMS-sub004/internal/shared/apperror"
)

var (
	ErrPolicyNotFound = apperror.New(
		apperror.CodeNotFound,
		"Leave policy not found",
		http.StatusNotFound,
	)

	ErrPolicyHasNoRules = apperror.New(
		apperror.CodeInvalidState,
		"Leave policy has no usable rules",
		http.StatusUnprocessableEntity,
	)

	ErrInvalidApplicableType = apperror.New(
		apperror.CodeInvalidInput,
		"Applicable type must be one of All, Department, Role, Specific",
		http.StatusBadRequest,
	)
)
