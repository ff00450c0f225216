package model

import "time"

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the
// database. The json tags are omitted here because these structs
// are primarily used internally by the repository layer; handlers
// define separate response types with appropriate JSON tags.
//
// Fields:
//  ID                – primary key identifier of the user.
//  FirstName         – given name, trimmed before storage.
//  LastName          – family name, trimmed before storage.
//  Email             – unique email address, stored lowercased.
//  PasswordHash      – bcrypt hashed password.
//  PasswordChangedAt – when the password was last changed (nil if never).
//  ProfileImageID    – optional foreign key into the images table.
//  IsActive          – whether the account may authenticate.
//  DeletedAt         – soft-delete timestamp (nil when the record is live).
//  CreatedAt         – timestamp of creation.
//  UpdatedAt         – timestamp of last update.
type User struct {
	ID                uint64     // users.id
	FirstName         string     // users.first_name
	LastName          string     // users.last_name
	Email             string     // users.email
	PasswordHash      string     // users.password_hash
	PasswordChangedAt *time.Time // users.password_changed_at (nullable)
	ProfileImageID    *uint64    // users.profile_image_id (nullable)
	IsActive          bool       // users.is_active
	DeletedAt         *time.Time // users.deleted_at (nullable, soft delete)
	CreatedAt         time.Time  // users.created_at
	UpdatedAt         time.Time  // users.updated_at
}
