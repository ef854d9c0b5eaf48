package main

import (
	"context"
	"strings"
	"time"

	"github.com/urfave/cli"

	"github.com/riskibarqy/matchlist/internal/domain/matchlist"
	"github.com/riskibarqy/matchlist/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchlist/internal/infrastructure/repository/sqldb"
	"github.com/riskibarqy/matchlist/internal/platform/logging"
	"github.com/riskibarqy/matchlist/internal/usecase"
)

const defaultLocation = "file:matchlist.db"

var (
	pairFlags = []cli.Flag{
		cli.Int64Flag{Name: "team-a, a", Usage: "first team id"},
		cli.Int64Flag{Name: "team-b, b", Usage: "second team id"},
	}

	scheduleFlags = append([]cli.Flag{
		cli.StringFlag{
			Name:  "start, s",
			Usage: `kickoff as RFC3339 or "YYYY-MM-DD HH:MM"`,
		},
		cli.StringFlag{
			Name:  "tz",
			Value: "UTC",
			Usage: "time zone for --start values without an offset",
		},
		cli.Int64Flag{
			Name:  "by",
			Usage: "id of the user scheduling the match",
		},
	}, pairFlags...)

	listFlags = []cli.Flag{
		cli.IntFlag{Name: "limit, n", Usage: "page size (default: 10, max: 100)"},
		cli.IntFlag{Name: "offset", Usage: "matches to skip"},
	}
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "matchctl"
	app.HelpName = "matchctl"
	app.Usage = "manage the upcoming match list"
	app.UsageText = "matchctl [--db location] <command> [arguments...]"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "db",
			Value:  defaultLocation,
			EnvVar: "DB_URL",
			Usage:  "storage location: sqlite path, postgres URL or memory://",
		},
		cli.BoolFlag{
			Name:  "verbose",
			Usage: "write JSON logs to stdout",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:    "schedule",
			Aliases: []string{"add"},
			Usage:   "schedule a match between two teams",
			Flags:   scheduleFlags,
			Action:  scheduleAction,
		},
		{
			Name:    "cancel",
			Aliases: []string{"rm"},
			Usage:   "cancel the match between two teams",
			Flags:   pairFlags,
			Action:  cancelAction,
		},
		{
			Name:    "list",
			Aliases: []string{"ls"},
			Usage:   "list upcoming matches, earliest first",
			Flags:   listFlags,
			Action:  listAction,
		},
		{
			Name:   "purge",
			Usage:  "remove matches that have already started",
			Action: purgeAction,
		},
	}
	return app
}

type services struct {
	matches *usecase.MatchService
	sweeper *usecase.ExpirySweeper
	repo    matchlist.Repository
}

func (s *services) Close() error {
	return s.repo.Close()
}

func openServices(c *cli.Context) (*services, error) {
	logger := logging.NewNop()
	if c.GlobalBool("verbose") {
		logger = logging.NewJSON(logging.LevelDebug)
	}

	location := strings.TrimSpace(c.GlobalString("db"))
	var repo matchlist.Repository
	if strings.HasPrefix(location, "memory://") {
		repo = memory.NewMatchListRepository()
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		sqlRepo, err := sqldb.NewMatchListRepository(ctx, location, sqldb.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		repo = sqlRepo
	}

	return &services{
		matches: usecase.NewMatchService(repo, nil, usecase.MatchServiceConfig{}, logger),
		sweeper: usecase.NewExpirySweeper(repo, nil, usecase.ExpirySweeperConfig{}, logger),
		repo:    repo,
	}, nil
}
