package authz

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrLinkageNotFound indicates the student's linkage record does not exist.
// Directory implementations must return it (possibly wrapped) on a miss.
var ErrLinkageNotFound = errors.New("student linkage not found")

// ErrForbidden indicates the actor may not mutate the target student.
var ErrForbidden = errors.New("actor may not mutate this student")

// Linkage is the subset of the student record the resolver needs: the
// student's own account identity plus both guardian resolution paths.
type Linkage struct {
	StudentEmail string
	ParentEmail  string
	GuardianID   *uint
}

// Directory looks up linkage data from the persistence layer.
type Directory interface {
	StudentLinkage(ctx context.Context, studentID uint) (Linkage, error)
	// ParentIDByEmail resolves a parent profile id for an identity, returning
	// 0 when no profile exists. Absence is not an error here.
	ParentIDByEmail(ctx context.Context, email string) (uint, error)
}

// Resolver decides whether an actor may mutate a student's progression
// state. It performs lookups only and never mutates anything itself.
type Resolver struct {
	directory Directory
}

// NewResolver constructs a resolver over the given directory.
func NewResolver(directory Directory) *Resolver {
	return &Resolver{directory: directory}
}

// CanMutateStudent returns nil when the actor is allowed to mutate the
// student, ErrForbidden (wrapped with a reason) when not, and
// ErrLinkageNotFound when the student has no linkage record. Admins and
// instructors are always allowed without a lookup.
func (r *Resolver) CanMutateStudent(ctx context.Context, actor Actor, studentID uint) error {
	if actor.Role.IsStaff() {
		return nil
	}

	linkage, err := r.directory.StudentLinkage(ctx, studentID)
	if err != nil {
		return err
	}

	identity := strings.ToLower(strings.TrimSpace(actor.Identity))
	if identity == "" {
		return fmt.Errorf("%w: actor has no identity", ErrForbidden)
	}

	if strings.EqualFold(linkage.StudentEmail, identity) {
		return nil
	}

	if actor.Role == RoleParent {
		if linkage.ParentEmail != "" && strings.EqualFold(linkage.ParentEmail, identity) {
			return nil
		}
		if linkage.GuardianID != nil {
			parentID, err := r.directory.ParentIDByEmail(ctx, identity)
			if err != nil {
				return err
			}
			if parentID != 0 && parentID == *linkage.GuardianID {
				return nil
			}
		}
	}

	return fmt.Errorf("%w: %s %q is not linked to student %d", ErrForbidden, actor.Role, identity, studentID)
}
