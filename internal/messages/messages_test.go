package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Every (domain, outcome) pair the handlers use must resolve. A miss
// here means a handler would answer with an empty message.
func TestResolveKnownKeys(t *testing.T) {
	used := map[string][]string{
		"auth": {
			"login_success", "login_failed",
			"logout_success", "logout_failed",
			"forgot_email_success", "forgot_email_fail",
			"reset_success", "reset_fail",
		},
		"profile": {
			"get", "get_error",
			"update_success", "update_error",
			"create_success", "create_error",
			"password", "password_error",
			"old_password_error", "old_password_equal_new",
		},
		"users": {
			"get", "get_error",
			"attach_permissions", "attach_permissions_failed", "attach_permissions_not_allowed",
			"detach_permissions", "detach_permissions_failed",
			"attach_roles", "attach_roles_failed", "attach_roles_not_allowed",
			"detach_roles", "detach_roles_failed",
			"activate", "deactivate", "activate_failed",
			"delete", "delete_failed",
			"email_exists",
		},
	}
	for domain, outcomes := range used {
		for _, outcome := range outcomes {
			assert.NotEmpty(t, Resolve(domain, outcome), "%s/%s", domain, outcome)
		}
	}
}

func TestResolveUnknown(t *testing.T) {
	assert.Empty(t, Resolve("auth", "nope"))
	assert.Empty(t, Resolve("nope", "login_success"))
}
