package model

import "time"

// AccessToken models an entry in the `access_tokens` table. Each
// token belongs to exactly one user and can be revoked independently,
// which gives users multi-device sessions. The signed JWT handed to
// the client carries this row's ID in its `jti` claim; authentication
// checks the row on every request so a revoked token stops working
// the moment the revocation commits.
//
// Fields:
//  ID        – primary key identifier, referenced by the JWT `jti` claim.
//  UserID    – owner of the token.
//  Name      – SHA-256 label derived from the app name and issue time.
//              A label only, never part of the credential itself.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type AccessToken struct {
	ID        uint64     // access_tokens.id
	UserID    uint64     // access_tokens.user_id
	Name      string     // access_tokens.name
	ExpiresAt time.Time  // access_tokens.expires_at
	RevokedAt *time.Time // access_tokens.revoked_at (nullable)
	CreatedAt time.Time  // access_tokens.created_at
}

// PasswordReset models an entry in the `password_resets` table. The
// raw reset token is mailed to the user; only its SHA-256 hash is
// stored. A reset consumes the row.
type PasswordReset struct {
	TokenHash string    // password_resets.token_hash
	UserID    uint64    // password_resets.user_id
	ExpiresAt time.Time // password_resets.expires_at
	CreatedAt time.Time // password_resets.created_at
}
