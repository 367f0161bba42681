package models

// Role distinguishes the three kinds of accounts on the platform.
type Role string

const (
	RoleCustomer   Role = "CUSTOMER"
	RoleRestaurant Role = "RESTAURANT"
	RoleDriver     Role = "DRIVER"
)

// AccountStatus tracks how far through onboarding an account is, independent
// of its role. Customers stop at PROFILE_COMPLETED; restaurants and drivers
// additionally go through approval.
type AccountStatus string

const (
	StatusEmailUnverified  AccountStatus = "EMAIL_UNVERIFIED"
	StatusEmailVerified    AccountStatus = "EMAIL_VERIFIED"
	StatusProfileCompleted AccountStatus = "PROFILE_COMPLETED"
	StatusPendingApproval  AccountStatus = "PENDING_APPROVAL"
	StatusApproved         AccountStatus = "APPROVED"
)

// User describes a platform account of any role.
type User struct {
	BaseModel

	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	Name         string `json:"name"`
	PasswordHash string `gorm:"not null" json:"-"`

	Role      Role          `gorm:"not null;default:'CUSTOMER'" json:"role"`
	Status    AccountStatus `gorm:"not null;default:'EMAIL_UNVERIFIED'" json:"status"`
	Suspended bool          `gorm:"default:false" json:"suspended"`

	VerificationTokens []VerificationToken `gorm:"foreignKey:UserID" json:"-"`
	Sessions           []Session           `gorm:"foreignKey:UserID" json:"-"`
}
