package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"github.com/zenflowapp/zenflow/internal/ui"
	"github.com/zenflowapp/zenflow/pkg/backup"
	"github.com/zenflowapp/zenflow/pkg/dateinput"
	"github.com/zenflowapp/zenflow/pkg/query"
	"github.com/zenflowapp/zenflow/pkg/store"
	"github.com/zenflowapp/zenflow/pkg/track"
)

var (
	dbPath     = flag.String("db", "zenflow.db", "Path to the task database")
	exportTo   = flag.String("export", "", "Write a backup to the given file and exit")
	importFrom = flag.String("import", "", "Merge a backup file into the database and exit")
	reset      = flag.Bool("reset", false, "Clear all data and reseed defaults (requires -confirm)")
	confirm    = flag.Bool("confirm", false, "Confirm a destructive operation")
	verbose    = flag.Bool("v", false, "Verbose logging")
)

func check(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	flag.Parse()

	log.SetLevel(log.WarnLevel)
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	s, err := store.Open(*dbPath, log.StandardLogger())
	check(err)
	defer s.Close()

	ctx := context.Background()
	check(s.Seed(ctx))

	codec := backup.New(s, log.StandardLogger())

	// one-shot operations, no TUI
	switch {
	case *exportTo != "":
		check(codec.ExportToFile(ctx, *exportTo))
		fmt.Println("exported to", *exportTo)
		return
	case *importFrom != "":
		// import merges, it never clears, so the flag itself is
		// confirmation enough
		check(codec.ImportFromFile(ctx, *importFrom))
		fmt.Println("imported", *importFrom)
		return
	case *reset:
		if !*confirm {
			fmt.Fprintln(os.Stderr, "-reset wipes everything; re-run with -confirm")
			os.Exit(1)
		}
		check(s.ResetAll(ctx))
		fmt.Println("store reset")
		return
	}

	title := textinput.NewModel()
	title.Focus()
	title.Prompt = ""
	title.Width = 40

	search := textinput.NewModel()
	search.Prompt = "/"
	search.Width = 30

	a := &app{
		titleinput:  title,
		searchinput: search,
		dateinput:   dateinput.NewModel(),
		viewport:    viewport.Model{},
		tabs:        ui.NewTabs([]string{"All", "Pinned", "High", "Completed"}),

		sortCfg: query.SortConfig{Key: query.KeyPriority, Direction: query.Desc},

		store:   s,
		codec:   codec,
		tracker: track.New(s),
		now:     time.Now,
	}

	p := tea.NewProgram(a)
	p.EnterAltScreen()
	defer p.ExitAltScreen()
	p.EnableMouseAllMotion()
	defer p.DisableMouseAllMotion()

	check(p.Start())
}
