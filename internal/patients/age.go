package patients

import "time"

// AgeAt returns the whole-year age at the reference date. The year difference
// is rolled back by one if the (month, day) anniversary has not yet occurred.
// A Feb 29 birth date therefore counts its anniversary on Mar 1 in non-leap
// years.
func AgeAt(dob Date, today time.Time) int {
	years := today.Year() - dob.Year()
	tm, td := today.Month(), today.Day()
	bm, bd := dob.Month(), dob.Day()
	if tm < bm || (tm == bm && td < bd) {
		years--
	}
	return years
}
