package entity

import "time"

// SignatureStatus is the single canonical signature state of a rental
// contract. The provider-side document lifecycle is richer (see
// DocumentStatus); locally a contract is either waiting for a signature or
// fully signed.
type SignatureStatus string

const (
	SignatureStatusPending SignatureStatus = "pending"
	SignatureStatusSigned  SignatureStatus = "signed"
)

// Rental is a rental contract record. DocumentID and PackageID are the
// provider-side identifiers of the uploaded contract and its signature
// package; both are empty until the contract enters the signature flow.
type Rental struct {
	ID            int64           `json:"id"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	VehicleDesc   string          `json:"vehicle_desc"`
	StartsAt      time.Time       `json:"starts_at"`
	EndsAt        time.Time       `json:"ends_at"`
	TotalAmount   float64         `json:"total_amount"`
	Status        SignatureStatus `json:"signature_status"`
	DocumentID    string          `json:"document_id,omitempty"`
	PackageID     string          `json:"package_id,omitempty"`
	SignedAt      *time.Time      `json:"signed_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (r *Rental) Signed() bool {
	return r.Status == SignatureStatusSigned
}
