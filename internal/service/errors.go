// Package service implements the application's business rules on top of
// the repository layer: credential authentication, token lifecycle,
// role-hierarchy authorization, account management and role/permission
// attachment.
//
// Errors raised on purpose (ErrNotFound, ErrNotAllowed,
// ErrDuplicateEmail, ...) travel unchanged to the handlers, which map
// each to a fixed status code and catalog message. Unexpected storage
// failures are caught at the transaction boundary, roll the transaction
// back, and are re-wrapped into the operation's failure sentinel so
// callers see a stable taxonomy regardless of root cause.
package service

import "errors"

var (
	// ErrInvalidArgument signals malformed input, e.g. an empty role set.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound signals that a referenced entity is absent.
	ErrNotFound = errors.New("not found")

	// ErrNotAllowed signals an authorization failure: the acting user's
	// role priority is not strictly higher than the target's.
	ErrNotAllowed = errors.New("not allowed")

	// ErrDuplicateEmail signals an email uniqueness violation.
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrSameOldPassword signals a password change where the new
	// password equals the old one.
	ErrSameOldPassword = errors.New("new password equals the old one")

	// ErrOldPasswordMismatch signals a password change where the
	// provided old password does not verify.
	ErrOldPasswordMismatch = errors.New("old password is incorrect")

	// ErrWeakPassword signals a password that fails the account policy.
	ErrWeakPassword = errors.New("password does not meet the policy")

	// Operation failure sentinels. Unexpected storage errors surface as
	// one of these after rollback; the root cause is logged, never
	// partially applied.
	ErrCreateFailed = errors.New("create failed")
	ErrUpdateFailed = errors.New("update failed")
	ErrDeleteFailed = errors.New("delete failed")
)
