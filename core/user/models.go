package user

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/makonzi/uwepo/core"
)

// Role is the closed set of account roles. Access decisions go through
// Role.Can, never through ad hoc string comparisons in handlers.
type Role string

const (
	RoleEmployee       Role = "employee"
	RoleAdmin          Role = "admin"
	RoleSuperAdmin     Role = "super_admin"
	RoleInventoryAdmin Role = "inventory_admin"
)

var AllRoles = []Role{RoleEmployee, RoleAdmin, RoleSuperAdmin, RoleInventoryAdmin}

// Capability names an action a role may perform.
type Capability string

const (
	CapPunchAttendance   Capability = "attendance:punch"
	CapViewCampusReports Capability = "reports:campus"
	CapViewAllReports    Capability = "reports:all"
	CapManageCampuses    Capability = "campuses:manage"
	CapManageLeave       Capability = "leave:manage"
	CapManageInventory   Capability = "inventory:manage"
	CapRequestInventory  Capability = "inventory:request"
	CapPostAnnouncements Capability = "announcements:post"
	CapIssueRedNotice    Capability = "attendance:red-notice"
	CapSyncLegacy        Capability = "attendance:sync"
	CapManageUsers       Capability = "users:manage"
)

var roleCaps = map[Role][]Capability{
	RoleEmployee: {CapPunchAttendance, CapRequestInventory},
	RoleAdmin: {
		CapPunchAttendance, CapViewCampusReports, CapManageLeave,
		CapPostAnnouncements, CapManageUsers,
	},
	RoleSuperAdmin: {
		CapPunchAttendance, CapViewCampusReports, CapViewAllReports,
		CapManageCampuses, CapManageLeave, CapManageInventory,
		CapPostAnnouncements, CapIssueRedNotice, CapSyncLegacy, CapManageUsers,
	},
	RoleInventoryAdmin: {CapPunchAttendance, CapManageInventory},
}

func (r Role) Valid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

func (r Role) Can(c Capability) bool {
	for _, allowed := range roleCaps[r] {
		if allowed == c {
			return true
		}
	}
	return false
}

// Role assignment from the email shape, as the university mail conventions
// dictate: the VC office gets super admin, directors and the HR office get
// admin, the store office gets inventory admin, everyone else on the campus
// domain is an employee.
var (
	superAdminLocalRegex = regexp.MustCompile(`^(vc|vcoffice)$`)
	adminLocalRegex      = regexp.MustCompile(`^(director-[a-z]+|hroffice)$`)
	inventoryLocalRegex  = regexp.MustCompile(`^(store|storeoffice)$`)
	employeeLocalRegex   = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+$`)
)

// AssignRole determines the account role from the email address.
// The second return is false when the address is not on the campus domain.
func AssignRole(email, domain string) (Role, bool) {
	email = core.CleanString(email, true /* lower */)
	suffix := "@" + domain
	if len(email) <= len(suffix) || email[len(email)-len(suffix):] != suffix {
		return "", false
	}
	local := email[:len(email)-len(suffix)]
	switch {
	case superAdminLocalRegex.MatchString(local):
		return RoleSuperAdmin, true
	case adminLocalRegex.MatchString(local):
		return RoleAdmin, true
	case inventoryLocalRegex.MatchString(local):
		return RoleInventoryAdmin, true
	case employeeLocalRegex.MatchString(local):
		return RoleEmployee, true
	}
	return "", false
}

type User struct {
	ID             string `json:"id" bson:"_id,omitempty"`
	EmployeeID     string `json:"employee_id" bson:"employee_id"`
	Email          string `json:"email" bson:"email"`
	FullName       string `json:"full_name" bson:"full_name"`
	Role           Role   `json:"role" bson:"role"`
	CampusID       string `json:"campus_id,omitempty" bson:"campus_id,omitempty"`
	Designation    string `json:"designation,omitempty" bson:"designation,omitempty"`
	Department     string `json:"department,omitempty" bson:"department,omitempty"`
	ProfilePicture string `json:"profile_picture,omitempty" bson:"profile_picture,omitempty"`
	IsActive       bool   `json:"is_active" bson:"is_active"`
	FirstLogin     bool   `json:"first_login" bson:"first_login"`

	PasswordHash []byte     `json:"-" bson:"hashed_password"`
	OTPSecret    string     `json:"-" bson:"otp_secret,omitempty"`
	OTPExpires   *time.Time `json:"-" bson:"otp_expires,omitempty"`

	RedNoticeIssued bool   `json:"red_notice_issued" bson:"red_notice_issued"`
	RedNoticeReason string `json:"red_notice_reason,omitempty" bson:"red_notice_reason,omitempty"`

	CasualLeavesRemaining  int `json:"casual_leaves_remaining" bson:"casual_leaves_remaining"`
	SickLeavesRemaining    int `json:"sick_leaves_remaining" bson:"sick_leaves_remaining"`
	SpecialLeavesRemaining int `json:"special_leaves_remaining" bson:"special_leaves_remaining"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"` // UTC
	LastLogin time.Time `json:"last_login" bson:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}

func (u *User) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}

func (u *User) Can(c Capability) bool {
	return u.Role.Can(c)
}

// NewUser contains information needed to sign a new User up.
type NewUser struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,strongpwd"`
	FullName   string `json:"full_name" validate:"required"`
	CampusID   string `json:"campus_id"`
	EmployeeID string `json:"employee_id"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.FullName = core.CleanString(nu.FullName)
	nu.EmployeeID = core.CleanString(nu.EmployeeID, true /* lower */)
	return validate.Struct(nu)
}

// VerifyOTP confirms the code mailed during signup or password reset.
type VerifyOTP struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

func (v *VerifyOTP) Validate(validate *validator.Validate) error {
	v.Email = core.CleanString(v.Email, true /* lower */)
	return validate.Struct(v)
}

// ResetUserPassword sets a new password after a verified reset OTP.
type ResetUserPassword struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,strongpwd"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (rp *ResetUserPassword) Validate(validate *validator.Validate) error {
	rp.Email = core.CleanString(rp.Email, true /* lower */)
	return validate.Struct(rp)
}

// UpdateProfile defines what a user may change on their own profile.
type UpdateProfile struct {
	FullName       string `json:"full_name"`
	Designation    string `json:"designation"`
	Department     string `json:"department"`
	ProfilePicture string `json:"-"`
}

// QueryFilter narrows user listings.
type QueryFilter struct {
	CampusID string `query:"campus_id"`
	Role     Role   `query:"role"`
	IsActive *bool  `query:"is_active"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.CampusID == "" && qf.Role == "" && qf.IsActive == nil
}
