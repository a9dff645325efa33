package utils

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// GenerateTicketCode creates the unique code printed on a ticket and
// embedded in its QR payload. Uppercase hex keeps it short enough for
// manual entry at the door while staying URL and QR safe.
func GenerateTicketCode() string {
	id := uuid.New()
	return "TCKT-" + strings.ToUpper(hex.EncodeToString(id[:6]))
}
