package domain

import "errors"

var (
	ErrInvalidDayCount   = errors.New("dayCount must be an integer between 1 and 7")
	ErrProfileNotFound   = errors.New("patient profile not found")
	ErrMealPlanNotFound  = errors.New("meal plan not found")
	ErrAccountNotFound   = errors.New("account not found")
	ErrNotAPatient       = errors.New("account is not a patient")
	ErrNotADoctor        = errors.New("account is not a doctor")
	ErrDoctorNotApproved = errors.New("doctor account is not approved")
	ErrForbidden         = errors.New("forbidden")
)
