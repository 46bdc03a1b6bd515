package patients

import "errors"

// ErrPatientNotFound is returned when a patient id does not resolve.
var ErrPatientNotFound = errors.New("patient not found")
