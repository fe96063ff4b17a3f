package auth

// Role is the closed set of account roles.
type Role string

const (
	RoleInvestor Role = "investor"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleInvestor, RoleSeller, RoleAdmin:
		return true
	}

	return false
}

// Capability names an action that only some roles may perform.
type Capability int

const (
	CapSell Capability = iota + 1
	CapInquire
	CapReview
	CapManageUsers
	CapPlatformTasks
	CapViewAll
)

var capabilities = map[Role]map[Capability]bool{
	RoleInvestor: {CapInquire: true},
	RoleSeller:   {CapSell: true},
	RoleAdmin: {
		CapSell:          true,
		CapReview:        true,
		CapManageUsers:   true,
		CapPlatformTasks: true,
		CapViewAll:       true,
	},
}

func (r Role) Can(c Capability) bool {
	return capabilities[r][c]
}

func (c Capability) String() string {
	switch c {
	case CapSell:
		return "sell"
	case CapInquire:
		return "inquire"
	case CapReview:
		return "review"
	case CapManageUsers:
		return "manage_users"
	case CapPlatformTasks:
		return "platform_tasks"
	case CapViewAll:
		return "view_all"
	}

	return "unknown"
}
