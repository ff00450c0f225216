package model

// Role represents a row in the `roles` table. Roles are immutable
// reference data seeded once at startup. The numeric ID doubles as
// the priority rank: a smaller ID denotes a more privileged role
// (super-admin < admin < user).
//
// Fields:
//  ID   – numeric identifier and priority rank of the role.
//  Name – human readable role name (e.g. "Super Admin").
//  Slug – unique machine name (e.g. "super-admin").
type Role struct {
	ID   uint64 // roles.id
	Name string // roles.name
	Slug string // roles.slug
}

// Permission represents a row in the `permissions` table. Like roles,
// permissions are seeded reference data. Users acquire permissions
// through the user_permissions association table.
//
// Fields:
//  ID          – numeric identifier of the permission.
//  Name        – human readable permission name.
//  Slug        – unique machine name (e.g. "attach-permissions").
//  Description – short explanation of what the permission grants.
type Permission struct {
	ID          uint64 // permissions.id
	Name        string // permissions.name
	Slug        string // permissions.slug
	Description string // permissions.description
}
