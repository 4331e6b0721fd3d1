package permissions_test

import (
	"net/http"
	"testing"
	"travelo/permissions"
	"travelo/shared/constant"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	data := permissions.Get()
	require.NotNil(t, data)

	assert.False(t, data.Skip)
	assert.NotEmpty(t, data.Endpoints)
}

func TestFindPermissions(t *testing.T) {
	data := permissions.Get()
	require.NotNil(t, data)

	tests := []struct {
		name     string
		path     string
		method   string
		skip     bool
		allowed  []string
		excluded []string
	}{
		{
			name:   "login is public",
			path:   "/v1/auth/login",
			method: http.MethodPost,
			skip:   true,
		},
		{
			name:     "sub-router root with trailing slash",
			path:     "/v1/bookings/",
			method:   http.MethodPost,
			allowed:  []string{constant.RoleTraveler, constant.RoleManager},
			excluded: []string{constant.RoleSuperAdmin},
		},
		{
			name:     "approvals are for approvers",
			path:     "/v1/bookings/{id}/approve",
			method:   http.MethodPost,
			allowed:  []string{constant.RoleManager, constant.RoleCompanyAdmin},
			excluded: []string{constant.RoleTraveler},
		},
		{
			name:     "funding is for platform operators",
			path:     "/v1/organizations/{id}/credits/fund",
			method:   http.MethodPost,
			allowed:  []string{constant.RoleSuperAdmin},
			excluded: []string{constant.RoleCompanyAdmin},
		},
		{
			name:     "allocation is for company admins",
			path:     "/v1/credits/allocate",
			method:   http.MethodPost,
			allowed:  []string{constant.RoleCompanyAdmin},
			excluded: []string{constant.RoleManager, constant.RoleTraveler},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			permission := data.FindPermissions(tt.path, tt.method)

			assert.Equal(t, tt.skip, permission.Skip)

			for _, role := range tt.allowed {
				assert.Contains(t, permission.Permissions, role)
			}

			for _, role := range tt.excluded {
				assert.NotContains(t, permission.Permissions, role)
			}
		})
	}

	t.Run("unknown route", func(t *testing.T) {
		permission := data.FindPermissions("/v1/invoices", http.MethodGet)

		assert.Empty(t, permission.Path)
		assert.Empty(t, permission.Permissions)
	})
}

func TestEmbeddedPermissions_KnownRoles(t *testing.T) {
	data := permissions.Get()
	require.NotNil(t, data)

	assert.NoError(t, data.Validate(constant.Roles))

	broken := permissions.PermissionData{Endpoints: []permissions.Permission{
		{Path: "/v1/bookings", Method: http.MethodGet, Permissions: []string{"travler"}},
	}}
	assert.ErrorContains(t, broken.Validate(constant.Roles), `unknown role "travler"`)
}

func TestPermission_Allows(t *testing.T) {
	open := permissions.Permission{}
	staff := permissions.Permission{Permissions: []string{constant.RoleManager, constant.RoleAdmin}}

	assert.True(t, open.Allows(constant.RoleTraveler))
	assert.True(t, staff.Allows(constant.RoleManager))
	assert.False(t, staff.Allows(constant.RoleTraveler))
}
