package entity

// Signer is a natural person registered with the provider. Email is the
// natural key; the provider account holds at most one signer per email in
// practice, but nothing enforces that server side.
type Signer struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}
