package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")

	cfg := LoadConfig()

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "localhost", cfg.DB.DbHOST)
	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, 2*time.Hour, cfg.AccessTokenDuration)
	assert.Equal(t, 168*time.Hour, cfg.RefreshTokenDuration)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxUploadSize)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_NAME", "feed_test")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("STORE_DRIVER", "Firestore")
	t.Setenv("FIRESTORE_PROJECT_ID", "demo")
	t.Setenv("CORS_ORIGINS", "http://a.test/, http://b.test")
	t.Setenv("ACCESS_TOKEN_DURATION", "15m")
	t.Setenv("MAX_UPLOAD_SIZE", "nope")
	t.Setenv("JWT_SECRET_KEY", "secret")

	cfg := LoadConfig()

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "feed_test", cfg.DB.DbNAME)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, StoreDriverFirestore, cfg.Store.Driver)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenDuration)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxUploadSize)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"missing secret", Config{Store: Store{Driver: StoreDriverPostgres}}, "JWT_SECRET_KEY"},
		{"firestore without project", Config{JWTSecretKey: "s", Store: Store{Driver: StoreDriverFirestore}}, "FIRESTORE_PROJECT_ID"},
		{"unknown driver", Config{JWTSecretKey: "s", Store: Store{Driver: "mongo"}}, "unknown STORE_DRIVER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDB_DSN(t *testing.T) {
	db := DB{DbHOST: "h", DbPORT: "1", DbUSER: "u", DbPASSWORD: "p", DbNAME: "n", DbSSLMODE: "disable"}
	assert.Equal(t, "host=h port=1 user=u password=p dbname=n sslmode=disable", db.DSN())
}

func TestLoadClientConfig(t *testing.T) {
	t.Setenv("POSTFEED_API_URL", "http://feed.test:8080/")
	t.Setenv("POSTFEED_REQUEST_TIMEOUT", "3s")

	cfg := LoadClientConfig()

	assert.Equal(t, "http://feed.test:8080", cfg.APIURL)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
}
