package user

// Principal is the authenticated caller. It is built from verified token
// claims and passed explicitly into every service operation.
type Principal struct {
	SubjectID string
	Role      Role
	CompanyID *string
}

func (p Principal) IsSuperAdmin() bool {
	return p.Role == RoleSuperAdmin
}

// IsAdmin reports whether the principal is a company admin or a super admin.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin || p.Role == RoleSuperAdmin
}

// Company returns the principal's company ID, or "" for super admins.
func (p Principal) Company() string {
	if p.CompanyID == nil {
		return ""
	}
	return *p.CompanyID
}

// CanAccessCompany reports whether the principal may act on records owned by companyID.
func (p Principal) CanAccessCompany(companyID string) bool {
	if p.IsSuperAdmin() {
		return true
	}
	return p.CompanyID != nil && *p.CompanyID != "" && *p.CompanyID == companyID
}

// IsSelf reports whether the principal is the door user identified by userID.
func (p Principal) IsSelf(userID string) bool {
	return p.Role == RoleUser && p.SubjectID == userID
}

func (p Principal) Can(permission Permission) bool {
	return HasPermission(p.Role, permission)
}

// Require returns ErrInsufficientPermissions unless the principal holds permission.
func (p Principal) Require(permission Permission) error {
	if !p.Can(permission) {
		return ErrInsufficientPermissions
	}
	return nil
}

// RequireCompany is Require plus a company scope check.
func (p Principal) RequireCompany(permission Permission, companyID string) error {
	if err := p.Require(permission); err != nil {
		return err
	}
	if !p.CanAccessCompany(companyID) {
		return ErrInsufficientPermissions
	}
	return nil
}

// ScopeFor returns the company filter for list queries: nil for super admins
// (all companies), otherwise the principal's own company.
func (p Principal) ScopeFor() *string {
	if p.IsSuperAdmin() {
		return nil
	}
	companyID := p.Company()
	return &companyID
}
