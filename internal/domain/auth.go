package domain

// TokenVerifier verifies a bearer token and returns the authenticated
// user ID. Token issuance belongs to the upstream identity provider;
// this service only trusts the verified subject as the acting member.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}
