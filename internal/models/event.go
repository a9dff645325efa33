package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID                  int64     `bun:"id,pk,autoincrement" json:"id"`
	Title               string    `bun:"title,notnull" json:"title"`
	Slug                string    `bun:"slug,unique,notnull" json:"slug"`
	Description         string    `bun:"description,notnull" json:"description"`
	Date                string    `bun:"date,notnull" json:"date"`
	Time                string    `bun:"time,notnull" json:"time"`
	Location            string    `bun:"location,notnull" json:"location"`
	Organizer           string    `bun:"organizer,notnull" json:"organizer"`
	Price               int       `bun:"price,notnull,default:0" json:"price"`
	IsCompleted         bool      `bun:"is_completed,notnull,default:false" json:"is_completed"`
	ImageURL            string    `bun:"image_url,nullzero" json:"image_url,omitempty"`
	BankName            string    `bun:"bank_name,nullzero" json:"bank_name,omitempty"`
	AccountNumber       string    `bun:"account_number,nullzero" json:"account_number,omitempty"`
	AccountHolder       string    `bun:"account_holder,nullzero" json:"account_holder,omitempty"`
	CertificateTemplate string    `bun:"certificate_template,nullzero" json:"certificate_template,omitempty"`
	CreatedAt           time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt           time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// Free reports whether registration requires no payment proof.
func (e *Event) Free() bool {
	return e.Price == 0
}
