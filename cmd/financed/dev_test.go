package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nathan-Yinka/autochek-API/pkg/auth"
)

func TestDevTokenCmd(t *testing.T) {
	t.Setenv("JWT_SECRET", "dev-secret")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"dev-token", "user-7", "--email", "ada@example.com", "--admin"})
	require.NoError(t, rootCmd.Execute())

	svc, err := auth.NewJWTService(auth.JWTConfig{Secret: "dev-secret", Issuer: "autochek"})
	require.NoError(t, err)
	claims, err := svc.ValidateToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "user-7", claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.True(t, claims.HasRole(auth.RoleAdmin))
}

func TestDevCertsCmd(t *testing.T) {
	dir := t.TempDir()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"dev-certs", "--out", dir})
	require.NoError(t, rootCmd.Execute())

	for _, name := range []string{"ca.pem", "server.pem", "server-key.pem"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}
