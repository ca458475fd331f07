// Command xposter posts guardrail-checked tweet threads from stdin, or bulk
// deletes the authenticated account's timeline with --delete-all.
//
// Posting:
//
//	printf 'tweet text' | xposter
//	printf 'tweet1\n---\ntweet2' | xposter
//
// Deleting everything:
//
//	xposter --delete-all
//
// Tweet text is accepted from stdin only; shell arguments cause escaping
// bugs with emoji and bullets, so positional arguments are rejected.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/AaronFaby/openclaw-skills/internal/batch"
	"github.com/AaronFaby/openclaw-skills/internal/config"
	"github.com/AaronFaby/openclaw-skills/internal/eraser"
	"github.com/AaronFaby/openclaw-skills/internal/guard"
	"github.com/AaronFaby/openclaw-skills/internal/thread"
	"github.com/AaronFaby/openclaw-skills/internal/xapi"
)

const version = "2.0.0"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "xposter",
		Usage:   "guardrailed X/Twitter thread poster (stdin in, thread out)",
		Version: version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "delete-all",
				Usage: "delete every tweet on the authenticated account's timeline",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "parse and validate stdin, print what would be posted, no network",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug logging",
			},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if c.Bool("verbose") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if c.Args().Len() > 0 {
		return fmt.Errorf("shell arguments not accepted; tweet text must come from stdin " +
			"(printf 'tweet text' | xposter)")
	}

	if c.Bool("delete-all") {
		return runDeleteAll(c)
	}
	return runPost(c)
}

func runPost(c *cli.Context) error {
	raw, err := batch.Read(os.Stdin)
	if err != nil {
		return err
	}

	checked, err := guard.Check(batch.Split(raw))
	if err != nil {
		return err
	}
	for _, i := range checked.Truncated {
		log.Warn().Int("draft", i+1).Int("max", guard.MaxChars).Msg("tweet truncated")
	}

	if c.Bool("dry-run") {
		fmt.Println("DRY RUN (no network calls)")
		for _, d := range checked.Drafts {
			fmt.Printf("--- tweet %d (%d chars) ---\n%s\n", d.Index+1, d.Len(), d.Text)
		}
		return nil
	}

	creds, err := config.Load()
	if err != nil {
		return err
	}

	res := thread.New(xapi.New(creds)).Post(c.Context, checked.Drafts)
	for _, id := range res.IDs() {
		fmt.Println(id)
	}
	if res.State != thread.Done {
		return fmt.Errorf("thread halted at draft %d with %d of %d posted: %w",
			res.FailedIndex+1, len(res.Posted), len(checked.Drafts), res.Err)
	}

	log.Info().Int("count", len(res.Posted)).Msg("all tweets posted")
	return nil
}

func runDeleteAll(c *cli.Context) error {
	creds, err := config.Load()
	if err != nil {
		return err
	}

	rep, err := eraser.New(xapi.New(creds)).Run(c.Context)
	if err != nil {
		return fmt.Errorf("deletion aborted after %d deleted (cursor %q): %w",
			rep.Deleted, rep.Cursor, err)
	}

	fmt.Printf("Deleted %d tweet(s) across %d page(s)\n", rep.Deleted, rep.Pages)
	return nil
}
