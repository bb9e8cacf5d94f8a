package config

import (
	"errors"
	"flag"
	"time"
)

// parses CLI flags for the recompute command
func ParseRecomputeFlags(args []string) (Flags, error) {
	fs := flag.NewFlagSet("recompute", flag.ContinueOnError)
	userID := fs.String("user", "", "recompute attributions for a single user id")
	all := fs.Bool("all", false, "recompute attributions for every user with recorded sales")
	rps := fs.Float64("rps", 2, "maximum runs started per second when -all is set")
	timeout := fs.Duration("timeout", 2*time.Minute, "timeout for a single user's run")

	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}

	flags := Flags{UserID: *userID, All: *all, RPS: *rps, Timeout: *timeout}

	switch {
	case flags.UserID == "" && !flags.All:
		return Flags{}, errors.New("one of -user or -all is required")
	case flags.UserID != "" && flags.All:
		return Flags{}, errors.New("-user and -all are mutually exclusive")
	case flags.RPS <= 0:
		return Flags{}, errors.New("-rps must be positive")
	case flags.Timeout <= 0:
		return Flags{}, errors.New("-timeout must be positive")
	}

	return flags, nil
}

// returns default flags for recompute
func DefaultRecomputeFlags() Flags {
	return Flags{RPS: 2, Timeout: 2 * time.Minute}
}
