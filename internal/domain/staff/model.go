package staff

import (
	"errors"
	"strings"
)

// Role constants for staff members.
const (
	RoleTrainer      = "trainer"
	RoleReceptionist = "receptionist"
	RoleManager      = "manager"
	RoleMaintenance  = "maintenance"
)

// ValidRoles contains all valid staff role values.
var ValidRoles = []string{RoleTrainer, RoleReceptionist, RoleManager, RoleMaintenance}

// StaffMember is an employee shown on the staff roster. Staff records are
// informational; operator logins live in the account package.
type StaffMember struct {
	ID       string
	Name     string
	Role     string
	Email    string
	Phone    string
	Schedule string // free text, e.g. "Mon-Fri 06:00-14:00"
}

// Validate checks if the StaffMember has valid data.
// PRE: StaffMember struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (s *StaffMember) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("staff name cannot be empty")
	}
	if !isValidRole(s.Role) {
		return errors.New("role must be one of: trainer, receptionist, manager, maintenance")
	}
	if s.Email != "" && !strings.Contains(s.Email, "@") {
		return errors.New("staff email must be valid")
	}
	return nil
}

func isValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
