package tour

import appErrors "tour-booking/pkg/errors"

var (
	ErrTourNotFound = appErrors.New(appErrors.KindNotFound, "TOUR_NOT_FOUND", "there is no tour with that name")
	ErrInvalidPoint = appErrors.New(appErrors.KindValidation, "INVALID_POINT", "please provide latitude and longitude in the format lat,lng")
	ErrInvalidUnit  = appErrors.New(appErrors.KindValidation, "INVALID_UNIT", "unit must be mi or km")
)
