package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatflowers/hubreport/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("APP_CONFIG_NAME", "does-not-exist")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, EnvDev, cfg.Env)
	assert.Equal(t, DBDriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Redis.ReportTTL)
	assert.Equal(t, "http://%s.cobot.me/api/memberships", cfg.Cobot.URLTemplate)
	assert.Equal(t, 30*time.Second, cfg.Cobot.Timeout)
	assert.Equal(t, 4, cfg.Report.Concurrency)
	assert.False(t, cfg.Report.IncludeIgnoredPlans)
}

func TestNew_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "app.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
database:
  driver: sqlite
  dsn: "file::memory:"
cobot:
  token: secret
  page_size: 50
hubs:
  - name: berlin
    location: Berlin
plan_types:
  - match: fixed
    type: Full-Time
  - match: mailbox
    type: Ignore
report:
  concurrency: 0
`), 0o600))
	t.Setenv("APP_CONFIG_FILE", file)
	t.Setenv("APP_COBOT_TOKEN", "from-env")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, DBDriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "from-env", cfg.Cobot.Token)
	assert.Equal(t, 50, cfg.Cobot.PageSize)
	require.Len(t, cfg.Hubs, 1)
	assert.Equal(t, types.HubSeed{Name: "berlin", Location: "Berlin"}, cfg.Hubs[0])
	assert.Equal(t, types.PlanTypeFullTime, cfg.PlanTypeFor("Fixed Desk"))
	assert.Equal(t, types.PlanTypeIgnore, cfg.PlanTypeFor("Virtual Mailbox"))
	assert.Equal(t, types.PlanTypeOthers, cfg.PlanTypeFor("Day Pass"))
	assert.Equal(t, 1, cfg.Report.Concurrency)
}

func TestNew_RejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
plan_types:
  - match: fixed
    type: Fulltime
`), 0o600))
	t.Setenv("APP_CONFIG_FILE", file)

	_, err := New()
	require.ErrorIs(t, err, types.ErrUnknownPlanType)
}
