package rbac

const (
	PermLabView            = "lab:view"
	PermApplicationViewOwn = "application:view-own"
	PermApplicationWrite   = "application:register"
	PermApplicantsViewAll  = "applicants:view-all"
	PermLabCapacity        = "lab:capacity"
	PermLabImport          = "lab:import"
	PermEventsView         = "events:view"
)

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	RoleStudent: {
		PermLabView,
		PermApplicationViewOwn,
		PermApplicationWrite,
	},
	RoleAdmin: {
		"*", // everything
	},
}
