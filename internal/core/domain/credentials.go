package domain

import "time"

// CredentialKind classifies how a credential authenticates against its source.
type CredentialKind string

const (
	// CredentialKindOAuth holds tokens obtained through an OAuth consent flow.
	CredentialKindOAuth CredentialKind = "oauth"
	// CredentialKindServiceAccount holds a service account key.
	CredentialKindServiceAccount CredentialKind = "service_account"
	// CredentialKindToken holds an API or personal access token.
	CredentialKindToken CredentialKind = "token"
)

// Credential is an existing credential record owned by the backend.
// It may seed a creation form and change which fields are visible.
type Credential struct {
	// ID is the backend identifier.
	ID int `json:"id"`
	// Source is the connector type the credential belongs to.
	Source string `json:"source"`
	// Name is an optional display name.
	Name string `json:"name,omitempty"`
	// Kind is reported by the backend and gates kind-specific fields.
	Kind CredentialKind `json:"kind,omitempty"`
	// Fields holds non-secret values that override schema defaults.
	Fields map[string]string `json:"fields,omitempty"`
	// AccountIdentifier is the user's email or username at the provider.
	AccountIdentifier string `json:"account_identifier,omitempty"`
	// TokenExpiry is when an OAuth access token expires, if known.
	TokenExpiry time.Time `json:"token_expiry,omitempty"`
	// CreatedAt is when the credential was created.
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired returns true if the OAuth access token has expired.
func (c *Credential) IsExpired() bool {
	if c.TokenExpiry.IsZero() {
		return false
	}
	return time.Now().After(c.TokenExpiry)
}

// NewestCredential returns the most recently created credential, or nil.
func NewestCredential(creds []Credential) *Credential {
	var newest *Credential
	for i := range creds {
		if newest == nil || creds[i].CreatedAt.After(newest.CreatedAt) {
			newest = &creds[i]
		}
	}
	return newest
}
