package user

import appErrors "tour-booking/pkg/errors"

var (
	ErrUserNotFound       = appErrors.New(appErrors.KindNotFound, "USER_NOT_FOUND", "there is no user with that email address")
	ErrPasswordFieldsInMe = appErrors.New(appErrors.KindValidation, "PASSWORD_UPDATE_NOT_ALLOWED", "this route is not for password updates, please use /updateMyPassword")
	ErrRoleNotAssignable  = appErrors.New(appErrors.KindForbidden, "ROLE_NOT_ASSIGNABLE", "that role cannot be self-assigned")
	ErrUseSignup          = appErrors.New(appErrors.KindValidation, "USE_SIGNUP", "this route is not defined, please use /signup instead")
)
