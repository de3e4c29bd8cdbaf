package enums

// UserRole is the entitlement tier projected from subscription state.
type UserRole string

const (
	UserRoleFree    UserRole = "free"
	UserRolePremium UserRole = "premium"
)

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is known.
func (r UserRole) IsValid() bool {
	return r == UserRoleFree || r == UserRolePremium
}
