package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRedisCommand(t *testing.T) {
	mr := miniredis.RunT(t)

	csvPath := filepath.Join(t.TempDir(), "locations.csv")
	content := "ip,city,state,postal_code\n" +
		"69.181.21.132,San Francisco,CA,94108\n" +
		"8.8.8.8,Mountain View,CA,94043\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(content), 0644))

	t.Setenv("REDIS_ADDR", mr.Addr())

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--csv", csvPath})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.True(t, mr.Exists("geo:69.181.21.132"))
	assert.True(t, mr.Exists("geo:8.8.8.8"))
}

func TestLoadRedisCommand_FlagOverridesEnv(t *testing.T) {
	mr := miniredis.RunT(t)

	csvPath := filepath.Join(t.TempDir(), "locations.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("ip,city,state,postal_code\n8.8.8.8,Mountain View,CA,94043\n"), 0644))

	t.Setenv("REDIS_ADDR", "invalid:9999")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--csv", csvPath, "--redis-addr", mr.Addr()})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.True(t, mr.Exists("geo:8.8.8.8"))
}

func TestLoadRedisCommand_MissingCSV(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("REDIS_ADDR", mr.Addr())

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--csv", filepath.Join(t.TempDir(), "missing.csv")})
	cmd.SetErr(io.Discard)

	assert.Error(t, cmd.ExecuteContext(context.Background()))
}
