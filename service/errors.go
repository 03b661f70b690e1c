package service

import "github.com/ariebrainware/medibook/util"

// Sentinel errors. Compare with errors.Is; messages may be specialised with WithMessage.
var (
	ErrInvalidCredentials = util.NewUnauthenticatedError("invalid_credentials", "incorrect username/email or password")
	ErrTokenExpired       = util.NewUnauthenticatedError("token_expired", "token has expired")
	ErrTokenInvalid       = util.NewUnauthenticatedError("token_invalid", "could not validate credentials")
	ErrTokenRevoked       = util.NewUnauthenticatedError("token_revoked", "token has been revoked")
	ErrRoleMismatch       = util.NewForbiddenError("role_mismatch", "user does not have the requested role")
	ErrAccountDisabled    = util.NewForbiddenError("account_disabled", "account is disabled")

	ErrPasswordMismatch  = util.NewValidationError("password_mismatch", "passwords do not match")
	ErrEmailTaken        = util.NewValidationError("email_taken", "email already registered")
	ErrUsernameTaken     = util.NewValidationError("username_taken", "username already taken")
	ErrAdminSelfRegister = util.NewValidationError("admin_self_register", "admin accounts cannot be registered publicly")
	ErrDisableSelf       = util.NewValidationError("disable_self", "administrators cannot disable their own account")

	ErrUserNotFound        = util.NewNotFoundError("user_not_found", "user not found")
	ErrPatientNotFound     = util.NewNotFoundError("patient_not_found", "patient not found")
	ErrDoctorNotFound      = util.NewNotFoundError("doctor_not_found", "doctor not found")
	ErrAppointmentNotFound = util.NewNotFoundError("appointment_not_found", "appointment not found")
	ErrRecordNotFound      = util.NewNotFoundError("record_not_found", "medical record not found")

	ErrWrongRole      = util.NewValidationError("wrong_role", "user does not have the role required for this profile")
	ErrProfileExists  = util.NewValidationError("profile_exists", "profile already exists")
	ErrProfileInUse   = util.NewValidationError("profile_in_use", "profile is referenced by appointments")
	ErrInvalidProfile = util.NewValidationError("invalid_profile", "invalid profile data")

	ErrInvalidRange       = util.NewValidationError("invalid_range", "end time must be after start time")
	ErrTooShort           = util.NewValidationError("too_short", "appointment must last at least 15 minutes")
	ErrConflict           = util.NewConflictError("conflict", "doctor is not available in this time slot")
	ErrInvalidStatus      = util.NewValidationError("invalid_status", "status must be one of scheduled, completed, cancelled")
	ErrInvalidAppointment = util.NewValidationError("invalid_appointment", "appointment does not exist or does not belong to the patient")
	ErrRecordExists       = util.NewValidationError("record_exists", "a medical record already exists for this appointment")
)
