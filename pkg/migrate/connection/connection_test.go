package connection

import (
	"context"
	"os"
	"testing"

	"github.com/baderkha/sql2doc/pkg/migrate/config/sourcecfg"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialUnreachableMysql(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Dial(ctx, sourcecfg.MYSQL{Host: "127.0.0.1", Port: 1, DB: "nope"}, 1, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MYSQL_SOURCE")
}

func TestDialMysqlLive(t *testing.T) {
	host := os.Getenv("MYSQL_HOST")
	if host == "" {
		t.Skip("Skipping Tests: MYSQL_HOST must be present")
	}
	db, err := Dial(context.Background(), sourcecfg.MYSQL{
		Host:         host,
		UserName:     os.Getenv("MYSQL_USER"),
		Password:     os.Getenv("MYSQL_PASS"),
		DB:           os.Getenv("MYSQL_NAME"),
		QueryLogging: true,
	}, 2, zerolog.Nop())
	require.NoError(t, err)
	defer db.Close()
	assert.NoError(t, db.Ping())
}

func TestDialMongoLive(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("Skipping Tests: MONGO_URI must be present")
	}
	client, err := DialMongo(context.Background(), uri)
	require.NoError(t, err)
	assert.NoError(t, client.Disconnect(context.Background()))
}
