package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsAndEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DATABASE_DRIVER", "memory")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 52, cfg.Schedule.MaxWeeks)
	assert.Equal(t, 4, cfg.Schedule.CopyConcurrency)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.False(t, cfg.S3.Enabled())
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  address: ":9090"
  read_timeout: 5s
database:
  driver: mongo
  uri: mongodb://db:27017
  name: coaching_test
s3:
  bucket_name: videos
  presign_expiry: 5m
jwt:
  secret: file-secret
  expiration: 30m
schedule:
  max_weeks: 8
  copy_concurrency: 2
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("SCHEDULE_MAX_WEEKS", "12")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "mongodb://db:27017", cfg.Database.URI)
	assert.Equal(t, "coaching_test", cfg.Database.Name)
	assert.True(t, cfg.S3.Enabled())
	assert.Equal(t, 5*time.Minute, cfg.S3.PresignExpiry)
	assert.Equal(t, "file-secret", cfg.JWT.Secret)
	assert.Equal(t, 30*time.Minute, cfg.JWT.Expiration)
	assert.Equal(t, 12, cfg.Schedule.MaxWeeks, "env overrides the file")
	assert.Equal(t, 2, cfg.Schedule.CopyConcurrency)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	assert.ErrorContains(t, err, "jwt.secret")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [unclosed"), 0o600))
	_, err = LoadConfig(dir)
	assert.ErrorContains(t, err, "read config")
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		Database: DatabaseConfig{Driver: DriverMemory},
		JWT:      JWTConfig{Secret: "s", Expiration: time.Hour},
		Schedule: ScheduleConfig{MaxWeeks: 1, CopyConcurrency: 1},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "postgres" }},
		{"mongo without uri", func(c *Config) { c.Database.Driver = DriverMongo }},
		{"zero expiration", func(c *Config) { c.JWT.Expiration = 0 }},
		{"zero max weeks", func(c *Config) { c.Schedule.MaxWeeks = 0 }},
		{"zero concurrency", func(c *Config) { c.Schedule.CopyConcurrency = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
