// Command kanmind-admin performs operator tasks against the KanMind database.
//
//	kanmind-admin create-staff --email ops@example.com --fullname "Ops" --password ...
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"kanmind-api/internal/apperr"
	"kanmind-api/internal/auth"
	"kanmind-api/internal/config"
	"kanmind-api/internal/database"
	"kanmind-api/internal/logging"
	"kanmind-api/internal/services"

	"github.com/spf13/pflag"
)

const usage = `usage: kanmind-admin <command> [flags]

commands:
  create-staff   create an active staff user
  migrate        apply database migrations and exit
`

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "kanmind-admin:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return errors.New("missing command")
	}

	fs := pflag.NewFlagSet("kanmind-admin "+args[0], pflag.ContinueOnError)
	flags := config.BindFlags(fs)

	switch args[0] {
	case "create-staff":
		email := fs.String("email", "", "staff email")
		fullname := fs.String("fullname", "", "staff full name")
		password := fs.String("password", "", "staff password (env: KANMIND_STAFF_PASSWORD)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *password == "" {
			*password = os.Getenv("KANMIND_STAFF_PASSWORD")
		}

		svc, closeDB, err := open(ctx, flags)
		if err != nil {
			return err
		}
		defer closeDB()

		user, err := svc.Identity.CreateStaff(ctx, services.RegisterInput{
			Fullname:         *fullname,
			Email:            *email,
			Password:         *password,
			RepeatedPassword: *password,
		})
		if err != nil {
			var ve *apperr.ValidationError
			if errors.As(err, &ve) {
				return fmt.Errorf("invalid staff user: %s", formatFields(ve))
			}
			return err
		}
		fmt.Fprintf(out, "created staff user %d <%s>\n", user.ID, user.Email)
		return nil

	case "migrate":
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		_, closeDB, err := open(ctx, flags)
		if err != nil {
			return err
		}
		closeDB()
		fmt.Fprintln(out, "database is up to date")
		return nil

	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	}

	fmt.Fprint(out, usage)
	return fmt.Errorf("unknown command %q", args[0])
}

// open loads the configuration and returns the domain services over a
// migrated database.
func open(ctx context.Context, flags *config.Flags) (*services.Services, func(), error) {
	cfg, err := config.Load(flags, os.LookupEnv)
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}

	db, err := database.InitDB(ctx, cfg.Database, log)
	if err != nil {
		return nil, nil, err
	}

	signer := auth.NewSigner(cfg.Auth.TokenSecret, cfg.Auth.TokenIssuer, cfg.Auth.TokenAudience, cfg.Auth.TokenTTL)
	svc := services.New(db, auth.NewTokenService(db, signer), log, cfg.Auth.BcryptCost)
	return svc, func() { _ = database.Close(db) }, nil
}

func formatFields(ve *apperr.ValidationError) string {
	parts := make([]string, 0, len(ve.Fields))
	for field, msgs := range ve.Fields {
		parts = append(parts, field+": "+strings.Join(msgs, " "))
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}
