package errors

import (
	"fmt"
	"net/http"

	"github.com/RushikJoshi/GT-HRMS-sub004/internal/shared/apperror"
)

var (
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"Leave request not found",
		http.StatusNotFound,
	)

	ErrPastDate = apperror.New(
		apperror.CodeInvalidInput,
		"Past dates are not allowed",
		http.StatusBadRequest,
	)

	ErrEndBeforeStart = apperror.New(
		apperror.CodeInvalidInput,
		"End date precedes start date",
		http.StatusBadRequest,
	)

	ErrWeeklyOff = apperror.New(
		apperror.CodeInvalidInput,
		"Leave cannot start or end on a weekly off day",
		http.StatusBadRequest,
	)

	ErrOverlap = apperror.New(
		apperror.CodeConflict,
		"Overlap detected with an existing request",
		http.StatusConflict,
	)

	ErrNoWorkingDays = apperror.New(
		apperror.CodeInvalidInput,
		"Selected period contains no working days",
		http.StatusBadRequest,
	)

	ErrNotPending = apperror.New(
		apperror.CodeInvalidState,
		"Only pending requests can be modified",
		http.StatusBadRequest,
	)

	ErrApprovedCannotCancel = apperror.New(
		apperror.CodeInvalidState,
		"Approved leaves cannot be cancelled directly. Please use attendance regularization if you were present",
		http.StatusBadRequest,
	)

	ErrNotAuthorized = apperror.New(
		apperror.CodeForbidden,
		"Only HR or the direct manager can act on this leave",
		http.StatusForbidden,
	)
)

func ErrHoliday(name string) *apperror.AppError {
	return apperror.New(
		apperror.CodeInvalidInput,
		fmt.Sprintf("Selected date is a public holiday: %s", name),
		http.StatusBadRequest,
	)
}

func ErrAlreadyFinalized(status string) *apperror.AppError {
	return apperror.New(
		apperror.CodeInvalidState,
		fmt.Sprintf("Request already %s", status),
		http.StatusBadRequest,
	)
}

func ErrInsufficientBalance(leaveType string, available float64) *apperror.AppError {
	return apperror.New(
		apperror.CodeInvalidState,
		fmt.Sprintf("Insufficient balance in %s. Available: %g", leaveType, available),
		http.StatusBadRequest,
	)
}

func ErrBalanceNotFound(leaveType string) *apperror.AppError {
	return apperror.New(
		apperror.CodeNotFound,
		fmt.Sprintf("Balance not found for %s", leaveType),
		http.StatusBadRequest,
	)
}
