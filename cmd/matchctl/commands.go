package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli"

	"github.com/riskibarqy/matchlist/internal/domain/matchlist"
	"github.com/riskibarqy/matchlist/internal/usecase"
)

const localLayout = "2006-01-02 15:04"

func scheduleAction(c *cli.Context) error {
	teamA, teamB, err := pairArgs(c)
	if err != nil {
		return err
	}
	start, err := parseKickoff(c.String("start"), c.String("tz"))
	if err != nil {
		return err
	}

	svc, err := openServices(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	item, err := svc.matches.Schedule(context.Background(), usecase.ScheduleInput{
		TeamA:     teamA,
		TeamB:     teamB,
		StartTime: start,
		Actor:     c.Int64("by"),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "scheduled %d vs %d at %s\n", item.TeamAID, item.TeamBID, item.StartsAt().Format(time.RFC3339))
	return nil
}

func cancelAction(c *cli.Context) error {
	teamA, teamB, err := pairArgs(c)
	if err != nil {
		return err
	}

	svc, err := openServices(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	item, err := svc.matches.Cancel(context.Background(), teamA, teamB)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "cancelled %d vs %d at %s\n", item.TeamAID, item.TeamBID, item.StartsAt().Format(time.RFC3339))
	return nil
}

func listAction(c *cli.Context) error {
	svc, err := openServices(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	items, err := svc.matches.ListUpcoming(context.Background(), time.Time{}, matchlist.Page{
		Limit:  c.Int("limit"),
		Offset: c.Int("offset"),
	})
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(c.App.Writer, "matchctl: no upcoming matches")
		return nil
	}

	return writeMatchTable(c.App.Writer, items)
}

func purgeAction(c *cli.Context) error {
	svc, err := openServices(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	result, err := svc.sweeper.RunOnce(context.Background())
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "purged %d match(es) starting at or before %s\n", len(result.Removed), result.Cutoff.Format(time.RFC3339))
	if len(result.Removed) > 0 {
		return writeMatchTable(c.App.Writer, result.Removed)
	}
	return nil
}

func writeMatchTable(w io.Writer, items []matchlist.ScheduledMatch) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTS AT\tTEAM A\tTEAM B\tSCHEDULED BY")
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", item.StartsAt().Format(time.RFC3339), item.TeamAID, item.TeamBID, item.ScheduledBy)
	}
	return tw.Flush()
}

func pairArgs(c *cli.Context) (int64, int64, error) {
	teamA, teamB := c.Int64("team-a"), c.Int64("team-b")
	if teamA <= 0 || teamB <= 0 {
		return 0, 0, errors.New("both --team-a and --team-b must be positive ids")
	}
	return teamA, teamB, nil
}

// parseKickoff accepts RFC3339, or a wall clock time read in tz.
func parseKickoff(raw, tz string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("--start is required")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}

	loc, err := time.LoadLocation(strings.TrimSpace(tz))
	if err != nil {
		return time.Time{}, fmt.Errorf("load time zone %q: %w", tz, err)
	}
	t, err := time.ParseInLocation(localLayout, raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("--start %q is neither RFC3339 nor %q", raw, localLayout)
	}
	return t, nil
}
