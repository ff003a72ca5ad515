package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"heartline/backend/internal/auth"
	"heartline/backend/internal/config"
	"heartline/backend/internal/logger"
	"heartline/backend/internal/models"
	"heartline/backend/internal/storage"
)

const usage = `Usage: admin <command> [args]

Commands:
  unmatch <match_id>             close a match and evict its room
  visibility <user_id> on|off    show or hide a user's online status
  issue-token <user_id>          create a session token
  revoke <jti>                   revoke a session
  ban <user_id> [hours]          refuse new connections (0 or omitted: forever)
  unban <user_id>`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, rdb, err := storage.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect dependencies")
	}
	defer rdb.Close()
	s := storage.NewStorageService(db, rdb)

	if err := run(ctx, s, cfg, os.Args[1:]); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run(ctx context.Context, s storage.Storage, cfg *config.Config, args []string) error {
	switch args[0] {
	case "unmatch":
		if len(args) != 2 {
			return fmt.Errorf("usage: admin unmatch <match_id>")
		}
		return unmatch(ctx, s, args[1])

	case "visibility":
		if len(args) != 3 || (args[2] != "on" && args[2] != "off") {
			return fmt.Errorf("usage: admin visibility <user_id> on|off")
		}
		if err := s.SetPresenceVisibility(ctx, args[1], args[2] == "on"); err != nil {
			return fmt.Errorf("set visibility: %w", err)
		}
		fmt.Printf("Online status of %s is now %s.\n", args[1], args[2])

	case "issue-token":
		if len(args) != 2 {
			return fmt.Errorf("usage: admin issue-token <user_id>")
		}
		token, jti, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.SessionTTL, s).Issue(ctx, args[1])
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}
		fmt.Printf("jti:   %s\ntoken: %s\n", jti, token)

	case "revoke":
		if len(args) != 2 {
			return fmt.Errorf("usage: admin revoke <jti>")
		}
		if err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.SessionTTL, s).Revoke(ctx, args[1]); err != nil {
			return fmt.Errorf("revoke session: %w", err)
		}
		fmt.Printf("Session %s has been revoked.\n", args[1])

	case "ban":
		if len(args) < 2 || len(args) > 3 {
			return fmt.Errorf("usage: admin ban <user_id> [hours]")
		}
		var hours int
		if len(args) == 3 {
			var err error
			hours, err = strconv.Atoi(args[2])
			if err != nil || hours < 0 {
				return fmt.Errorf("invalid duration %q: expected a number of hours", args[2])
			}
		}
		if err := s.BanUser(ctx, args[1], time.Duration(hours)*time.Hour); err != nil {
			return fmt.Errorf("ban user: %w", err)
		}
		fmt.Printf("User %s has been banned.\n", args[1])

	case "unban":
		if len(args) != 2 {
			return fmt.Errorf("usage: admin unban <user_id>")
		}
		if err := s.UnbanUser(ctx, args[1]); err != nil {
			return fmt.Errorf("unban user: %w", err)
		}
		fmt.Printf("User %s has been unbanned.\n", args[1])

	default:
		return fmt.Errorf("unknown command %q\n\n%s", args[0], usage)
	}
	return nil
}

// unmatch flips the match to UNMATCHED and tells every running server so
// they close the room.
func unmatch(ctx context.Context, s storage.Storage, matchID string) error {
	if err := s.UnmatchMatch(ctx, matchID); err != nil {
		return fmt.Errorf("unmatch: %w", err)
	}
	if err := s.PublishMatchEvent(ctx, models.MatchEvent{MatchID: matchID, Status: models.MatchUnmatched}); err != nil {
		return fmt.Errorf("publish match event: %w", err)
	}
	fmt.Printf("Match %s has been closed.\n", matchID)
	return nil
}
