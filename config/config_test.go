package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithMissingEnvFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("PORT", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverMySQL, cfg.DB.Driver)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 3306, cfg.DB.Port)
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	content := "JWT_SECRET=from-file\nDB_DRIVER=sqlite\nDB_PATH=/tmp/catering.db\nCORS_ALLOWED_ORIGINS=http://a.test, http://b.test\nBASE_URL=http://api.test/\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	// godotenv never overrides variables that are already set.
	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("DB_DRIVER")
	os.Unsetenv("DB_PATH")
	os.Unsetenv("CORS_ALLOWED_ORIGINS")
	os.Unsetenv("BASE_URL")
	t.Cleanup(func() {
		for _, k := range []string{"JWT_SECRET", "DB_DRIVER", "DB_PATH", "CORS_ALLOWED_ORIGINS", "BASE_URL"} {
			os.Unsetenv(k)
		}
	})

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "/tmp/catering.db", cfg.DB.Path)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, "http://api.test", cfg.BaseURL)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			JWTSecret: "s",
			JWTTTL:    time.Hour,
			DB:        DBConfig{Driver: DriverPostgres, Host: "h", User: "u", Name: "n"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid postgres", mutate: func(c *Config) {}},
		{name: "missing secret", mutate: func(c *Config) { c.JWTSecret = "" }, wantErr: true},
		{name: "missing db host", mutate: func(c *Config) { c.DB.Host = "" }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.DB.Driver = "oracle" }, wantErr: true},
		{name: "sqlite needs path", mutate: func(c *Config) { c.DB.Driver = DriverSQLite; c.DB.Path = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInitDB_SQLite(t *testing.T) {
	db, err := InitDB(DBConfig{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "test.db"), MaxOpenConns: 1})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.NoError(t, sqlDB.Ping())
	sqlDB.Close()
}
