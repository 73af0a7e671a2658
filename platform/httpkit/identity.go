package httpkit

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity is the back-office user behind an authenticated request and the
// agency their token was issued for.
type Identity struct {
	UserID   uuid.UUID
	AgencyID uuid.UUID
	Roles    []string
}

func (i Identity) HasRole(role string) bool {
	return slices.Contains(i.Roles, role)
}

// IdentityFrom reads the identity AuthRequired stored on c. ok is false when
// either the user or the agency is missing.
func IdentityFrom(c *gin.Context) (Identity, bool) {
	userID, _ := c.Get(ContextUserIDKey)
	tenantID, _ := c.Get(ContextTenantIDKey)

	uid, ok := userID.(uuid.UUID)
	if !ok || uid == uuid.Nil {
		return Identity{}, false
	}
	aid, ok := tenantID.(uuid.UUID)
	if !ok || aid == uuid.Nil {
		return Identity{}, false
	}

	id := Identity{UserID: uid, AgencyID: aid}
	if roles, exists := c.Get(ContextRolesKey); exists {
		id.Roles, _ = roles.([]string)
	}
	return id, true
}

// MustGetIdentity is IdentityFrom for handlers behind AuthRequired. When the
// identity is missing it aborts with 401 and returns false.
func MustGetIdentity(c *gin.Context) (Identity, bool) {
	id, ok := IdentityFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Kind: "unauthorized"})
	}
	return id, ok
}
