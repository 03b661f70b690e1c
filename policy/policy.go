// Package policy decides whether a caller may perform an operation on a resource.
// Every service consults Authorize before reading or mutating state.
package policy

import (
	"fmt"

	"github.com/ariebrainware/medibook/model"
	"github.com/ariebrainware/medibook/util"
)

// Caller is the authenticated principal of a request.
type Caller struct {
	ID       uint
	Username string
	Role     model.Role
	Disabled bool
}

func (c Caller) IsAdmin() bool  { return c.Role == model.RoleAdmin }
func (c Caller) IsDoctor() bool { return c.Role == model.RoleDoctor }

// CallerFromUser builds a Caller from a persisted user.
func CallerFromUser(u model.User) Caller {
	return Caller{ID: u.ID, Username: u.Username, Role: u.Role, Disabled: u.Disabled}
}

// Kind is the access pattern of an operation.
type Kind int

const (
	ReadOwn Kind = iota
	ReadAny
	WriteOwn
	WriteAny
	AdminOnly
)

func (k Kind) ownerScoped() bool {
	return k == ReadOwn || k == WriteOwn
}

// Operation is an entry of the catalogue.
type Operation struct {
	Name       string
	Kind       Kind
	DoctorOnly bool
	// ReadAnyRoles lifts the owner check of a ReadOwn operation for these roles.
	ReadAnyRoles []model.Role
}

func (op Operation) readAnyFor(role model.Role) bool {
	for _, r := range op.ReadAnyRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Denial reasons.
const (
	ReasonDisabled   = "account_disabled"
	ReasonDoctorOnly = "doctor_only"
	ReasonNotOwner   = "not_owner"
	ReasonAdminOnly  = "admin_only"
)

// Decision is the outcome of Authorize.
type Decision struct {
	Allowed   bool
	Reason    string
	Operation string
}

// Err converts a denial into a Forbidden AppError. It returns nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return ErrForbidden.WithMessage(fmt.Sprintf("not allowed to %s (%s)", d.Operation, d.Reason))
}

// ErrForbidden matches every policy denial under errors.Is.
var ErrForbidden = util.NewForbiddenError("policy_denied", "operation not permitted")

// Authorize evaluates op for caller against the user ids owning the target resource.
// Rules apply in order: admin allow, disabled deny, doctor-only deny, owner check,
// admin-only guard, allow.
func Authorize(caller Caller, op Operation, owners ...uint) Decision {
	d := Decision{Operation: op.Name}

	if caller.IsAdmin() {
		d.Allowed = true
		return d
	}
	if caller.Disabled {
		d.Reason = ReasonDisabled
		return d
	}
	if op.DoctorOnly && !caller.IsDoctor() {
		d.Reason = ReasonDoctorOnly
		return d
	}
	if op.Kind.ownerScoped() && !isOwner(caller.ID, owners) {
		if !(op.Kind == ReadOwn && op.readAnyFor(caller.Role)) {
			d.Reason = ReasonNotOwner
			return d
		}
	}
	if op.Kind == AdminOnly {
		d.Reason = ReasonAdminOnly
		return d
	}
	d.Allowed = true
	return d
}

// Require is Authorize returning an error for denials.
func Require(caller Caller, op Operation, owners ...uint) error {
	return Authorize(caller, op, owners...).Err()
}

func isOwner(id uint, owners []uint) bool {
	if id == 0 {
		return false
	}
	for _, o := range owners {
		if o == id {
			return true
		}
	}
	return false
}

// Scope restricts list queries to the rows a caller may see.
type Scope struct {
	All bool
	// UserID is matched against the patient's or the doctor's user id.
	UserID uint
	Role   model.Role
}

// ListScope returns everything for admins and the caller's own rows otherwise.
func ListScope(caller Caller) Scope {
	if caller.IsAdmin() {
		return Scope{All: true, Role: caller.Role}
	}
	return Scope{UserID: caller.ID, Role: caller.Role}
}
