// Command tokengen issues signed access tokens for local testing of the
// realtime endpoint.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/yigit/schoolchat/internal/app/models"
	"github.com/yigit/schoolchat/internal/bootstrap"
	"github.com/yigit/schoolchat/internal/config"
	"github.com/yigit/schoolchat/internal/seed"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "tokengen:", err)
		os.Exit(1)
	}
}

// run prints a signed token for the identity described by args to stdout
func run(args []string, stdout, stderr io.Writer) error {
	var (
		configPath string
		userID     string
		role       string
		schoolID   string
	)

	flagSet := pflag.NewFlagSet("tokengen", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&configPath, "config", filepath.Join("configs", "config.yaml"), "path to the YAML config file")
	flagSet.StringVar(&userID, "user", seed.DemoStudentA, "user id to put in the token")
	flagSet.StringVar(&role, "role", string(models.RoleStudent), "STUDENT, TEACHER or ADMIN")
	flagSet.StringVar(&schoolID, "school", seed.DemoSchoolID, "school id to put in the token")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	_ = godotenv.Load()

	identity := models.Identity{
		UserID:   strings.TrimSpace(userID),
		Role:     models.RoleType(strings.ToUpper(role)),
		SchoolID: schoolID,
	}
	if identity.UserID == "" {
		return fmt.Errorf("--user is required")
	}
	if !identity.Role.Valid() {
		return fmt.Errorf("unknown role %q", role)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	token, expiresAt, err := bootstrap.NewJWTService(cfg).GenerateToken(identity)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, token)
	fmt.Fprintf(stderr, "expires %s\n", expiresAt.Format(time.RFC3339))
	return nil
}
