package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
		check   func(t *testing.T, conf *Config)
	}{
		{
			name: "dev defaults",
			check: func(t *testing.T, conf *Config) {
				assert.Equal(t, "DEV", conf.Env)
				assert.True(t, conf.Debug)
				assert.Equal(t, devSecretKey, conf.SecretKey)
				assert.Equal(t, StorageMemory, conf.Storage)
				assert.Equal(t, 7*24*time.Hour, conf.Server.JWTExpirationDelta)
				assert.Equal(t, bcrypt.DefaultCost, conf.Security.BcryptCost)
			},
		},
		{
			name: "test mode overrides",
			env: map[string]string{
				"ENV":                              "test",
				"TEST_SERVER_JWT_EXPIRATION_DELTA": "1h",
				"TEST_SECURITY_BCRYPT_COST":        "4",
			},
			check: func(t *testing.T, conf *Config) {
				assert.Equal(t, "TEST", conf.Env)
				assert.True(t, conf.TestMode)
				assert.False(t, conf.Debug)
				assert.Equal(t, time.Hour, conf.Server.JWTExpirationDelta)
				assert.Equal(t, 4, conf.Security.BcryptCost)
			},
		},
		{
			name:    "secret required outside dev",
			env:     map[string]string{"ENV": "QA"},
			wantErr: "config: secret key is required",
		},
		{
			name: "secret from env",
			env:  map[string]string{"ENV": "QA", "QA_SECRET_KEY": "s3cr3t"},
			check: func(t *testing.T, conf *Config) {
				assert.Equal(t, "s3cr3t", conf.SecretKey)
				assert.Equal(t, StoragePostgres, conf.Storage)
				assert.Equal(t, "localhost:5432", conf.Database.Address())
			},
		},
		{
			name:    "dev secret refused in prod",
			env:     map[string]string{"ENV": "PROD", "PROD_SECRET_KEY": devSecretKey},
			wantErr: "config: the development secret key cannot be used in PROD",
		},
		{
			name:    "unknown storage",
			env:     map[string]string{"DEV_STORAGE": "mongo"},
			wantErr: `config: unknown storage "mongo"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CONFIG_DIR", t.TempDir())
			t.Setenv("ENV", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			conf, err := NewConfig()
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, conf)
		})
	}
}
