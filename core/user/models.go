package user

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

// Role is the closed set of user roles. The zero value is not a valid role.
type Role uint8

const (
	RoleTeacher Role = iota + 1
	RoleStudent
)

var (
	AllRoles = []Role{RoleTeacher, RoleStudent}

	roleNames = map[Role]string{
		RoleTeacher: "TEACHER",
		RoleStudent: "STUDENT",
	}
)

// ParseRole returns the Role named s ("TEACHER" or "STUDENT").
func ParseRole(s string) (Role, error) {
	for role, name := range roleNames {
		if name == s {
			return role, nil
		}
	}
	return 0, ErrInvalidRole
}

func (r Role) IsValid() bool {
	_, ok := roleNames[r]
	return ok
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, ErrInvalidRole
	}
	return []byte(roleNames[r]), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	role, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = role
	return nil
}

// Value implements driver.Valuer; roles are stored by name.
func (r Role) Value() (driver.Value, error) {
	if !r.IsValid() {
		return nil, ErrInvalidRole
	}
	return roleNames[r], nil
}

// Scan implements sql.Scanner.
func (r *Role) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		return r.UnmarshalText([]byte(v))
	case []byte:
		return r.UnmarshalText(v)
	default:
		return fmt.Errorf("user: cannot scan %T into Role", src)
	}
}

type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Role         Role      `json:"role" db:"role"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
}

func (u *User) SetPassword(pwd string, cost int) error {
	hash, err := HashPassword(pwd, cost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) bool {
	return VerifyPassword(pwd, u.PasswordHash)
}

func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u *User) IsStudent() bool { return u.Role == RoleStudent }

// NewUser contains information needed to register a new User.
type NewUser struct {
	Email    string `json:"email" validate:"required,notblank,email"`
	Password string `json:"password" validate:"required,pwdlen"`
	Role     string `json:"role" validate:"required,role"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Email = core.CleanString(nu.Email)
	nu.Role = core.CleanString(nu.Role)
	return validate.Struct(nu)
}

// Credentials are exchanged for a token at login.
type Credentials struct {
	Email    string `json:"email" validate:"required,notblank"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Validate(validate *validator.Validate) error {
	c.Email = core.CleanString(c.Email)
	return validate.Struct(c)
}

// AuthResult is returned by a successful registration or login.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
