package prompt

import "strings"

// RiskRole is the normalized challenger role for risk sessions.
type RiskRole string

const (
	RiskRoleOperations RiskRole = "operations"
	RiskRoleTechnology RiskRole = "technology"
	RiskRoleCompliance RiskRole = "compliance"
	RiskRoleVendor     RiskRole = "vendor"
	RiskRoleControls   RiskRole = "controls"
	RiskRoleGeneric    RiskRole = "generic"
)

// riskRoleTokens is checked in order; the first token contained in the role wins.
var riskRoleTokens = []struct {
	token string
	role  RiskRole
}{
	{"operations", RiskRoleOperations},
	{"business", RiskRoleOperations},
	{"technology", RiskRoleTechnology},
	{"tech", RiskRoleTechnology},
	{"compliance", RiskRoleCompliance},
	{"legal", RiskRoleCompliance},
	{"vendor", RiskRoleVendor},
	{"controls", RiskRoleControls},
	{"1lod", RiskRoleControls},
}

// ParseRiskRole lower-cases role and matches it against the known tokens.
// Unknown roles map to RiskRoleGeneric.
func ParseRiskRole(role string) RiskRole {
	r := strings.ToLower(strings.TrimSpace(role))
	if r == "" {
		return RiskRoleGeneric
	}
	for _, t := range riskRoleTokens {
		if strings.Contains(r, t.token) {
			return t.role
		}
	}
	return RiskRoleGeneric
}
