package services

import (
	"context"
	"testing"

	"surveycopy/internal/testutil"

	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServicePlugin(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	injector := do.New()
	do.ProvideValue(injector, db)

	service, err := NewServicePlugin(injector)
	require.NoError(t, err)

	plugin, err := service.InstallAndActivate(ctx, "AuditLog")
	require.NoError(t, err)
	assert.True(t, plugin.Active)
	assert.NotZero(t, plugin.ID)

	again, err := service.InstallAndActivate(ctx, "AuditLog")
	require.NoError(t, err)
	assert.Equal(t, plugin.ID, again.ID)

	plugins, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, plugins, 1)

	plugin, err = service.Deactivate(ctx, "AuditLog")
	require.NoError(t, err)
	assert.False(t, plugin.Active)

	plugin, err = service.Deactivate(ctx, "Unknown")
	require.NoError(t, err)
	assert.Nil(t, plugin)

	plugin, err = service.InstallAndActivate(ctx, "AuditLog")
	require.NoError(t, err)
	assert.True(t, plugin.Active)

	_, err = service.InstallAndActivate(ctx, "")
	assert.Error(t, err)
}
