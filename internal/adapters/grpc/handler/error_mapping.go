package handler

import (
	"errors"

	"github.com/carlosarraes/payroll/internal/core/adjustment"
	"github.com/carlosarraes/payroll/internal/core/employee"
	"github.com/carlosarraes/payroll/internal/core/payroll"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func toStatusError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, employee.ErrInvalidID),
		errors.Is(err, employee.ErrInvalidName),
		errors.Is(err, employee.ErrInvalidSalary),
		errors.Is(err, employee.ErrInvalidDepartment),
		errors.Is(err, employee.ErrInvalidRole),
		errors.Is(err, employee.ErrInvalidKind),
		errors.Is(err, employee.ErrInvalidContractCompany),
		errors.Is(err, employee.ErrInvalidPlannedMonths),
		errors.Is(err, adjustment.ErrUnknownStrategy),
		errors.Is(err, adjustment.ErrInvalidName):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, employee.ErrEmployeeAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, employee.ErrEmployeeNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, adjustment.ErrNoStrategy), errors.Is(err, payroll.ErrPaymentUnavailable):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
