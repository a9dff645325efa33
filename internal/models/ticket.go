package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Ticket statuses. A paid registration waits for an admin to confirm the
// transferred payment; free registrations are confirmed immediately.
const (
	StatusPending   = "menunggu_konfirmasi"
	StatusConfirmed = "dikonfirmasi"
	StatusRejected  = "ditolak"
)

// ValidStatus reports whether s is one of the three ticket statuses.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusRejected
}

type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID       int64     `bun:"user_id,notnull" json:"user_id"`
	EventID      int64     `bun:"event_id,notnull" json:"event_id"`
	Status       string    `bun:"status,notnull" json:"status"`
	TicketCode   string    `bun:"ticket_code,unique,notnull" json:"ticket_code"`
	IsAttended   bool      `bun:"is_attended,notnull,default:false" json:"is_attended"`
	PaymentProof string    `bun:"payment_proof,nullzero" json:"payment_proof,omitempty"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`

	User  *User  `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Event *Event `bun:"rel:belongs-to,join:event_id=id" json:"event,omitempty"`
}
