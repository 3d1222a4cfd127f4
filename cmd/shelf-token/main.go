// shelf-token mints an HS256 bearer token for a user id, signed with the
// same SHELF_JWT_SECRET / SHELF_JWT_ISSUER the server verifies against.
//
//	SHELF_JWT_SECRET=... shelf-token --user alice --ttl 24h
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/MrSnakeDoc/shelf/internal/auth"
	"github.com/MrSnakeDoc/shelf/internal/config"
	"github.com/MrSnakeDoc/shelf/internal/version"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Getenv); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer, getenv func(string) string) error {
	var (
		userID      string
		ttl         time.Duration
		showVersion bool
	)

	flagSet := pflag.NewFlagSet("shelf-token", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVarP(&userID, "user", "u", "", "user id to put in the sub claim (required)")
	flagSet.DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	flagSet.BoolVar(&showVersion, "version", false, "print version and exit")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(stdout, "Usage: shelf-token --user ID [--ttl 24h]\n\n%s", flagSet.FlagUsages())
			return nil
		}
		return err
	}

	if showVersion {
		fmt.Fprintf(stdout, "shelf-token %s\n", version.String())
		return nil
	}

	if userID == "" {
		return errors.New("--user is required")
	}
	if ttl <= 0 {
		return fmt.Errorf("--ttl must be > 0, got %v", ttl)
	}

	secret := getenv("SHELF_JWT_SECRET")
	if len(secret) < config.MinJWTSecretLength {
		return fmt.Errorf("SHELF_JWT_SECRET must be at least %d characters", config.MinJWTSecretLength)
	}

	token, err := auth.NewJWTSigner(secret, getenv("SHELF_JWT_ISSUER"), ttl).Issue(userID)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(stdout, token)
	return err
}
