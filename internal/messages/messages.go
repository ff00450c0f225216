// Package messages is the externalized catalog of user-facing response
// strings. Entries are keyed by (domain, outcome) so handlers never
// carry literal copy; the catalog is the single place translators or
// product can touch.
package messages

var catalog = map[string]map[string]string{
	"auth": {
		"login_success":        "User was successfully logged in",
		"login_failed":         "Unable to login user",
		"logout_success":       "User was successfully logged out",
		"logout_failed":        "Unable to logout user",
		"forgot_email_success": "Forgot password email sent successfully",
		"forgot_email_fail":    "Forgot password email send fail",
		"reset_success":        "Password reset successfully",
		"reset_fail":           "Unable to reset password",
	},
	"profile": {
		"get":                      "Returned Profile",
		"get_error":                "Unable to get user profile",
		"update_success":           "User profile updated successfully",
		"update_error":             "User profile update failed",
		"create_success":           "User created successfully",
		"create_error":             "Create user failed",
		"password":                 "Password updated successfully",
		"password_error":           "Password updated failed. The password should have at least 6 characters, 1 letter, 1 number and 1 special character",
		"old_password_error":       "Old password is incorrect",
		"old_password_equal_new":   "Password shouldn't be the same as the old one",
	},
	"users": {
		"get":                            "Users found",
		"get_error":                      "Unable to get users",
		"attach_permissions":             "Permissions added successfully",
		"attach_permissions_failed":      "Attach permissions failed",
		"attach_permissions_not_allowed": "This user is not allowed to attach/detach permissions",
		"detach_permissions":             "Permissions removed successfully",
		"detach_permissions_failed":      "Detach permissions failed",
		"attach_roles":                   "Roles added successfully",
		"attach_roles_failed":            "Roles attach failed",
		"detach_roles":                   "Roles removed successfully",
		"detach_roles_failed":            "Detach roles failed",
		"attach_roles_not_allowed":       "This user is not allowed to attach/detach roles",
		"activate":                       "Users activated successfully",
		"deactivate":                     "Users deactivated successfully",
		"activate_failed":                "Unable to change user activation",
		"delete":                         "User deleted successfully",
		"delete_failed":                  "Unable to delete user",
		"email_exists":                   "Email already exists",
	},
}

// Resolve returns the catalog entry for a (domain, outcome) pair, or an
// empty string when no entry exists. Handlers treat a miss as a
// programming error surfaced by tests, not a runtime failure.
func Resolve(domain, outcome string) string {
	if d, ok := catalog[domain]; ok {
		return d[outcome]
	}
	return ""
}
