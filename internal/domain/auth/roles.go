package auth

const (
	RoleTeacher   = "teacher"
	RolePrincipal = "principal"
	RoleHR        = "hr"
	RoleAdmin     = "admin"
)

const (
	PermAppraisalRead     = "appraisal.read"
	PermAppraisalWrite    = "appraisal.write"
	PermAppraisalReview   = "appraisal.review"
	PermAppraisalFinalize = "appraisal.finalize"
	PermDisputeOpen       = "dispute.open"
	PermDisputeResolve    = "dispute.resolve"
	PermDisputeRead       = "dispute.read"
	PermKpiRead           = "kpi.read"
	PermKpiWrite          = "kpi.write"
	PermKpiApprove        = "kpi.approve"
	PermCPERead           = "cpe.read"
	PermCPEWrite          = "cpe.write"
	PermCPEApprove        = "cpe.approve"
	PermConfigRead        = "config.read"
	PermConfigAdmin       = "config.admin"
	PermReportsRead       = "reports.read"
	PermAuditRead         = "audit.read"
)

var RolePermissions = map[string][]string{
	RoleTeacher: {
		PermAppraisalRead,
		PermAppraisalWrite,
		PermDisputeOpen,
		PermDisputeRead,
		PermKpiRead,
		PermKpiWrite,
		PermCPERead,
		PermCPEWrite,
		PermReportsRead,
	},
	RolePrincipal: {
		PermAppraisalRead,
		PermAppraisalReview,
		PermDisputeRead,
		PermDisputeResolve,
		PermKpiRead,
		PermKpiApprove,
		PermCPERead,
		PermCPEApprove,
		PermConfigRead,
		PermReportsRead,
	},
	RoleHR: {
		PermAppraisalRead,
		PermAppraisalReview,
		PermAppraisalFinalize,
		PermDisputeRead,
		PermDisputeResolve,
		PermKpiRead,
		PermCPERead,
		PermCPEApprove,
		PermConfigRead,
		PermConfigAdmin,
		PermReportsRead,
		PermAuditRead,
	},
	RoleAdmin: {
		PermAppraisalRead,
		PermAppraisalWrite,
		PermAppraisalReview,
		PermAppraisalFinalize,
		PermDisputeOpen,
		PermDisputeResolve,
		PermDisputeRead,
		PermKpiRead,
		PermKpiWrite,
		PermKpiApprove,
		PermCPERead,
		PermCPEWrite,
		PermCPEApprove,
		PermConfigRead,
		PermConfigAdmin,
		PermReportsRead,
		PermAuditRead,
	},
}

// HasPermission resolves a role's permission from the static table.
func HasPermission(roleName, permission string) bool {
	for _, granted := range RolePermissions[roleName] {
		if granted == permission {
			return true
		}
	}
	return false
}
