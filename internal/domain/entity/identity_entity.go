package entity

// FederatedIdentity is the verified subset of claims taken from a Google ID token.
type FederatedIdentity struct {
	Email         string
	Name          string
	Picture       string
	EmailVerified bool
}
