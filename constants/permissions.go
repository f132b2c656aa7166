package constants

// Organization permissions
const (
	// Admin permissions
	PermSuperAdminFull   = "culinary-booking.super-admin.full-permit"
	PermAdminFull        = "culinary-booking.admin.full-permit"
	PermManagerFull      = "culinary-booking.manager.full-permit"
	PermInstructorFull   = "culinary-booking.instructor.full-permit"
	PermReceptionistFull = "culinary-booking.receptionist.full-permit"
	PermAccountantFull   = "culinary-booking.accountant.full-permit"

	// Special permissions
	PermAny = "any"
)

// Permission groups for convenience
var (
	BackOfficePermissions = []string{
		PermSuperAdminFull,
		PermAdminFull,
		PermManagerFull,
	}

	FrontDeskPermissions = []string{
		PermSuperAdminFull,
		PermAdminFull,
		PermManagerFull,
		PermReceptionistFull,
	}

	FinancePermissions = []string{
		PermSuperAdminFull,
		PermAdminFull,
		PermAccountantFull,
	}
)
