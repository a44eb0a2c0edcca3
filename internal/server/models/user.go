package models

import "time"

// Role is a team member's single-valued role. Roles are hierarchical:
// admin > supervisor > volunteer.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleVolunteer  Role = "volunteer"
)

var roleRank = map[Role]int{
	RoleVolunteer:  1,
	RoleSupervisor: 2,
	RoleAdmin:      3,
}

func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// Covers reports whether a holder of r satisfies a gate requiring required.
// An admin covers every role; a volunteer covers only volunteer gates.
func (r Role) Covers(required Role) bool {
	return roleRank[r] >= roleRank[required] && roleRank[r] > 0 && roleRank[required] > 0
}

// User is a team member/operator. PasswordHash never leaves the auth layer
// and is excluded from JSON.
type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Phone        string     `json:"phone,omitempty"`
	District     string     `json:"district,omitempty"`
	Taluka       string     `json:"taluka,omitempty"`
	Role         Role       `json:"role"`
	IsActive     bool       `json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
}

// UserFilter narrows user listings. Nil fields are unconstrained; Search
// matches name, email, and phone.
type UserFilter struct {
	Role     *Role
	District *string
	Taluka   *string
	Active   *bool
	Search   *string
	Limit    int
	Offset   int
}

// UserPatch carries the fields of a partial update. Nil fields are left
// untouched; an all-nil patch is rejected with ErrorNoFieldsToUpdate.
type UserPatch struct {
	FirstName    *string
	LastName     *string
	Phone        *string
	District     *string
	Taluka       *string
	Role         *Role
	IsActive     *bool
	PasswordHash *string
}

// Empty reports whether the patch carries no changes.
func (p UserPatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Phone == nil &&
		p.District == nil && p.Taluka == nil && p.Role == nil &&
		p.IsActive == nil && p.PasswordHash == nil
}

// RoleCount and DistrictCount are breakdown rows in UserStats.
type RoleCount struct {
	Role  Role  `json:"role"`
	Count int64 `json:"count"`
}

type DistrictCount struct {
	District string `json:"district"`
	Count    int64  `json:"count"`
}

// UserStats aggregates the users table: totals plus per-role and top-10
// per-district breakdowns.
type UserStats struct {
	Total      int64           `json:"total"`
	Active     int64           `json:"active"`
	ByRole     []RoleCount     `json:"byRole"`
	ByDistrict []DistrictCount `json:"byDistrict"`
}
