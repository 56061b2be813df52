package models

import (
	"time"

	"github.com/google/uuid"
)

// Signature capture statuses.
const (
	SignatureStatusRequested = "requested"
	SignatureStatusCompleted = "completed"
	SignatureStatusExpired   = "expired"
)

// SignatureCapture is a pending e-signature request. Reminder3DaySentAt and
// Reminder1DaySentAt stamp each reminder exactly once; the sweep checks the
// stamp instead of scanning the free-text notes column.
type SignatureCapture struct {
	ID                    uuid.UUID  `json:"id"`
	MerchantApplicationID *uuid.UUID `json:"merchant_application_id,omitempty"`
	ProspectID            *uuid.UUID `json:"prospect_id,omitempty"`
	SignerName            string     `json:"signer_name"`
	SignerEmail           string     `json:"signer_email"`
	RoleKey               string     `json:"role_key"`
	Status                string     `json:"status"`
	RequestedAt           time.Time  `json:"requested_at"`
	ExpiresAt             time.Time  `json:"expires_at"`
	CompletedAt           *time.Time `json:"completed_at,omitempty"`
	Notes                 string     `json:"notes"`
	Reminder3DaySentAt    *time.Time `json:"reminder_3day_sent_at,omitempty"`
	Reminder1DaySentAt    *time.Time `json:"reminder_1day_sent_at,omitempty"`
}

// SignatureParty is the resolved company/agent context for a signature,
// looked up from the originating merchant application or prospect.
type SignatureParty struct {
	CompanyName string
	AgentName   string
}
