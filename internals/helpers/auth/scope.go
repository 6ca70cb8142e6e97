// Tenant-scope predicate. Derived once per request from JWT claims and
// threaded into every query instead of per-method role branching.
package helper

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"gymku_backend/internals/constants"
	"gymku_backend/internals/helpers/errs"
)

const LocScope = "scope"

type Scope struct {
	UserID  uuid.UUID
	Role    string
	BrandID *uuid.UUID // set for every non-admin role
	StoreID *uuid.UUID // set for STORE_MANAGER, COACH
}

// Apply appends the tenant predicate for the given brand/store columns.
// ADMIN sees everything; brand managers and members see their brand; store
// managers and coaches see their store.
func (s Scope) Apply(q *gorm.DB, brandCol, storeCol string) *gorm.DB {
	switch s.Role {
	case constants.RoleAdmin:
		return q
	case constants.RoleBrandManager, constants.RoleMember:
		if s.BrandID != nil {
			return q.Where(brandCol+" = ?", *s.BrandID)
		}
	case constants.RoleStoreManager, constants.RoleCoach:
		if s.StoreID != nil {
			return q.Where(storeCol+" = ?", *s.StoreID)
		}
	}
	// No resolvable scope: match nothing rather than leak cross-tenant rows.
	return q.Where("1 = 0")
}

// ApplyBrand scopes brand-owned tables (no store column, e.g. courses).
func (s Scope) ApplyBrand(q *gorm.DB, brandCol string) *gorm.DB {
	if s.Role == constants.RoleAdmin {
		return q
	}
	if s.BrandID != nil {
		return q.Where(brandCol+" = ?", *s.BrandID)
	}
	return q.Where("1 = 0")
}

// AllowsStore reports whether a row in the given brand/store is visible.
func (s Scope) AllowsStore(brandID, storeID uuid.UUID) bool {
	switch s.Role {
	case constants.RoleAdmin:
		return true
	case constants.RoleBrandManager, constants.RoleMember:
		return s.BrandID != nil && *s.BrandID == brandID
	case constants.RoleStoreManager, constants.RoleCoach:
		return s.StoreID != nil && *s.StoreID == storeID
	}
	return false
}

// ScopeFromCtx returns the scope stored by the auth middleware.
func ScopeFromCtx(c *fiber.Ctx) (Scope, error) {
	sc, ok := c.Locals(LocScope).(Scope)
	if !ok {
		return Scope{}, errs.Validation("request scope missing")
	}
	return sc, nil
}
