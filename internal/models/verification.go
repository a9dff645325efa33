package models

// Verification outcomes. These are business-level results, not transport
// errors: a re-scan of an already checked-in ticket is a normal event at
// the door and still answers 200.
const (
	VerifySuccess         = "success"
	VerifyAlreadyAttended = "already_attended"
	VerifyInvalid         = "invalid"
)

type VerificationResult struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	User    *User   `json:"user,omitempty"`
	Ticket  *Ticket `json:"ticket,omitempty"`
}
