package employee

import "errors"

var (
	ErrInvalidID              = errors.New("employee: invalid id")
	ErrInvalidName            = errors.New("employee: invalid name")
	ErrInvalidSalary          = errors.New("employee: invalid salary")
	ErrInvalidDepartment      = errors.New("employee: invalid department")
	ErrInvalidRole            = errors.New("employee: invalid role")
	ErrInvalidKind            = errors.New("employee: invalid kind")
	ErrInvalidContractCompany = errors.New("employee: invalid contracted company")
	ErrInvalidPlannedMonths   = errors.New("employee: invalid planned months")
	ErrEmployeeNotFound       = errors.New("employee: not found")
	ErrEmployeeAlreadyExists  = errors.New("employee: already exists")
)
