package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/schoolchat/internal/app/models"
	"github.com/yigit/schoolchat/internal/bootstrap"
	"github.com/yigit/schoolchat/internal/config"
	"github.com/yigit/schoolchat/internal/seed"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "jwt:\n  secret: tokengen-secret\n  access_token_expiration: 1h\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRun(t *testing.T) {
	t.Setenv("JWT_SECRET", "tokengen-secret")
	configPath := writeConfig(t)

	tests := []struct {
		name      string
		args      []string
		want      models.Identity
		wantErr   string
		wantToken bool
	}{
		{
			name:      "defaults to the demo student",
			args:      []string{"--config", configPath},
			want:      models.Identity{UserID: seed.DemoStudentA, Role: models.RoleStudent, SchoolID: seed.DemoSchoolID},
			wantToken: true,
		},
		{
			name:      "explicit teacher with lowercase role",
			args:      []string{"--config", configPath, "--user", "teacher-1", "--role", "teacher", "--school", "school-9"},
			want:      models.Identity{UserID: "teacher-1", Role: models.RoleTeacher, SchoolID: "school-9"},
			wantToken: true,
		},
		{
			name:      "user id is trimmed",
			args:      []string{"--config", configPath, "--user", " admin-1 ", "--role", "ADMIN"},
			want:      models.Identity{UserID: "admin-1", Role: models.RoleAdmin, SchoolID: seed.DemoSchoolID},
			wantToken: true,
		},
		{
			name:    "unknown role",
			args:    []string{"--config", configPath, "--role", "janitor"},
			wantErr: "unknown role",
		},
		{
			name:    "blank user",
			args:    []string{"--config", configPath, "--user", "  "},
			wantErr: "--user is required",
		},
		{
			name:    "unknown flag",
			args:    []string{"--expires", "1h"},
			wantErr: "unknown flag",
		},
		{
			name: "help",
			args: []string{"--help"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(tt.args, &stdout, &stderr)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Empty(t, stdout.String())
				return
			}
			require.NoError(t, err)

			if !tt.wantToken {
				assert.Empty(t, stdout.String())
				return
			}

			cfg, err := config.LoadConfig(configPath)
			require.NoError(t, err)

			token := strings.TrimSpace(stdout.String())
			identity, err := bootstrap.NewJWTService(cfg).VerifyIdentity(context.Background(), token)
			require.NoError(t, err)
			assert.Equal(t, tt.want, identity)
			assert.Contains(t, stderr.String(), "expires ")
		})
	}
}
