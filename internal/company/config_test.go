package company

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workroomhq/appkit/internal/shared"
)

func writeCompanyConfig(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestLoadConfigAppliesOverlay(t *testing.T) {
	dir := t.TempDir()
	writeCompanyConfig(t, dir, "17_company.json", `{
		"status": 10,
		"domain": "c17-d1.example.com",
		"mysql_host": "mysql-17",
		"manticore_host": "manticore-17"
	}`)

	cfg, err := LoadConfig(17, dir)
	require.NoError(t, err)

	assert.Equal(t, int64(17), cfg.CompanyID)
	assert.Equal(t, StatusHibernated, cfg.Status)
	assert.Equal(t, "c17-d1.example.com", cfg.Domain)
	assert.Equal(t, "mysql-17", cfg.MysqlHost)
	assert.Equal(t, "manticore-17", cfg.ManticoreHost)
	// untouched fields keep their defaults
	assert.Equal(t, "sender", cfg.SenderHost)
	assert.Equal(t, "root", cfg.MysqlUser)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(99, t.TempDir())
	require.ErrorIs(t, err, shared.ErrCompanyNotServed)
}

func TestLoadConfigMalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeCompanyConfig(t, dir, "17_company.json", "{not json")

	_, err := LoadConfig(17, dir)
	require.ErrorIs(t, err, shared.ErrCompanyConfigBroken)
}

func TestLoadConfigWithoutDir(t *testing.T) {
	cfg, err := LoadConfig(5, "")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, cfg.Status)
}

func TestTenantFromConfig(t *testing.T) {
	tenant := TenantFromConfig(&Config{CompanyID: 17, Status: StatusActive})
	assert.Equal(t, int64(17), tenant.CompanyID())
	assert.True(t, tenant.IsActive())
	assert.True(t, tenant.IsServed())
	assert.False(t, tenant.IsHibernated())

	deleted := NewTenant(17, StatusDeleted)
	assert.False(t, deleted.IsServed())
}
