package accountsdk

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	minPasswordLength = 8
	minFullNameLength = 2
	maxFullNameLength = 255
	maxEmailLength    = 320
)

// Validate checks the registration payload.
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, maxEmailLength), is.Email),
		validation.Field(&r.Password, validation.Required, validation.RuneLength(minPasswordLength, 0)),
		validation.Field(&r.FullName, validation.Required, validation.RuneLength(minFullNameLength, maxFullNameLength)),
	)
}

// Validate checks the fields that are present. Phone is free text and is
// stored as given.
func (r UpdateAccountRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FullName, validation.NilOrNotEmpty, validation.RuneLength(minFullNameLength, maxFullNameLength)),
	)
}

// Validate checks the login payload. Only presence is enforced so that a
// malformed email fails the same way as a wrong one.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// FieldErrors flattens a validation error into field name to message. Errors
// that are not per-field are reported under "_".
func FieldErrors(err error) map[string]string {
	if err == nil {
		return nil
	}

	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for field, ferr := range verrs {
		out[field] = ferr.Error()
	}
	return out
}
