package model

// Business outcomes are encoded as one small enum per operation family,
// never as Go errors: an error return from the core always means an
// infrastructure failure. Callers switch on the status and must not be
// able to confuse "pass already booked" with "database down".

// BookingStatus is the outcome family shared by the booking allocator
// and pass lookups.
type BookingStatus uint8

const (
	BookingOK BookingStatus = iota
	BookingInvalidUser
	BookingInvalidPassInfo
	BookingInvalidDate
	BookingBookedPass
	BookingLockedPass
	BookingExistentActivePass
	BookingPassCountExceeded
	BookingNoBooking
)

func (s BookingStatus) String() string {
	switch s {
	case BookingOK:
		return "OK"
	case BookingInvalidUser:
		return "INVALID_USER"
	case BookingInvalidPassInfo:
		return "INVALID_PASS_INFO"
	case BookingInvalidDate:
		return "INVALID_DATE"
	case BookingBookedPass:
		return "BOOKED_PASS"
	case BookingLockedPass:
		return "LOCKED_PASS"
	case BookingExistentActivePass:
		return "EXISTENT_ACTIVE_PASS"
	case BookingPassCountExceeded:
		return "PASS_COUNT_EXCEEDED"
	case BookingNoBooking:
		return "NO_BOOKING"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON renders the status by name so clients never depend on the
// numeric ordering.
func (s BookingStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// ScheduleStatus is the outcome family of the weekly schedule views.
type ScheduleStatus uint8

const (
	ScheduleOK ScheduleStatus = iota
	ScheduleInvalidUser
	ScheduleInvalidPrivilege
	ScheduleInvalidWeek
)

func (s ScheduleStatus) String() string {
	switch s {
	case ScheduleOK:
		return "OK"
	case ScheduleInvalidUser:
		return "INVALID_USER"
	case ScheduleInvalidPrivilege:
		return "INVALID_PRIVILEGE"
	case ScheduleInvalidWeek:
		return "INVALID_WEEK"
	default:
		return "UNKNOWN"
	}
}

func (s ScheduleStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UserStatus is the outcome family of login, registration and directory
// operations.
type UserStatus uint8

const (
	UserOK UserStatus = iota
	UserLoginFailure
	UserInvalidUser
	UserInvalidPrivilege
	UserExistentEmail
	UserExistentUsername
)

func (s UserStatus) String() string {
	switch s {
	case UserOK:
		return "OK"
	case UserLoginFailure:
		return "LOGIN_FAILURE"
	case UserInvalidUser:
		return "INVALID_USER"
	case UserInvalidPrivilege:
		return "INVALID_PRIVILEGE"
	case UserExistentEmail:
		return "EXISTENT_EMAIL"
	case UserExistentUsername:
		return "EXISTENT_USERNAME"
	default:
		return "UNKNOWN"
	}
}

func (s UserStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}
