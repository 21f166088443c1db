package cli

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/aiam-project/focuserve/internal/config"
	"github.com/aiam-project/focuserve/internal/storage"
)

// showHistory implements the history command: list recorded serve
// sessions and print overall totals.
func showHistory(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	db, err := storage.InitDB(storage.Config{
		DatabasePath: cfg.History.DatabasePath,
		LogLevel:     "silent",
	})
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to open history database: %v", err), 1)
	}
	defer db.Close()

	sessions, err := db.ListSessions(c.Int("limit"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if len(sessions) == 0 {
		fmt.Println("no serve sessions recorded yet")
		return nil
	}

	// Grouped digits keep large byte counts readable.
	p := message.NewPrinter(language.English)

	for _, s := range sessions {
		p.Printf("%s  port %d  %v requests  %v bytes  %s\n",
			s.StartedAt.Format(time.DateTime),
			s.Port,
			s.Requests,
			s.BytesSent,
			describeSession(s))
	}

	stats, err := db.GetStats()
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	p.Printf("total: %v sessions, %v requests, %v bytes\n",
		stats.Sessions, stats.Requests, stats.BytesSent)
	return nil
}

// describeSession summarizes how a session ended.
func describeSession(s *storage.Session) string {
	switch {
	case s.StoppedAt.IsZero():
		return "unfinished"
	case s.CleanShutdown:
		return fmt.Sprintf("ran %s", s.StoppedAt.Sub(s.StartedAt).Round(time.Second))
	default:
		return "ended with error"
	}
}
