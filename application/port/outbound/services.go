package outbound

// TokenClaims is the identity carried by an access token. It deliberately
// excludes the role: roles can change after issuance, so authorization
// always re-reads the profile.
type TokenClaims struct {
	UserID string
	Email  string
}

// TokenService issues and validates bearer credentials.
type TokenService interface {
	GenerateAccessToken(claims TokenClaims) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
}

// PasswordService hashes and verifies identity credentials.
type PasswordService interface {
	HashPassword(password string) (string, error)
	VerifyPassword(password, hash string) (bool, error)
}

// SecretGenerator produces temporary credentials for provisioned accounts
// when the caller does not supply one.
type SecretGenerator interface {
	Generate() (string, error)
}
