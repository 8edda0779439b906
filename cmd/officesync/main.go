// ABOUTME: Entry point for the officesync CLI
// ABOUTME: Runs the sync layer against the local bridge for inspection and smoke testing
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/harperreed/officesync/cache"
	"github.com/harperreed/officesync/config"
	"github.com/harperreed/officesync/crm"
	"github.com/harperreed/officesync/engine"
	"github.com/harperreed/officesync/events"
	"github.com/harperreed/officesync/localbridge"
)

const version = "0.1.0"

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "Database path (default: XDG data dir)")
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("officesync version %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", "err", err)
	}
	if cfg.DeviceID == "" {
		cfg.DeviceID = config.GenerateDeviceID()
		if err := config.Save(cfg); err != nil {
			log.Fatal("Failed to persist device ID", "err", err)
		}
	}

	logger := log.Default()
	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
		logger.SetLevel(lvl)
	}
	logger = logger.With("device", cfg.DeviceID)

	path := cfg.DatabasePath()
	if *dbPath != "" {
		path = *dbPath
	}

	bus := events.NewBus()
	bridge, err := localbridge.Open(path, bus, logger)
	if err != nil {
		log.Fatal("Failed to open local bridge", "err", err)
	}
	defer bridge.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// A configured feed URL relays a remote backend's push events onto the
	// same bus the local bridge publishes on.
	if cfg.EventFeedURL != "" {
		feed := events.NewFeed(cfg.EventFeedURL, bus)
		go feed.Run(ctx)
		defer feed.Close()
	}

	deps := engine.Deps{
		Bridge:          bridge,
		Cache:           cache.New(cfg.CacheTTLDuration()),
		Events:          bus,
		Logger:          logger,
		RefreshInterval: cfg.RefreshIntervalDuration(),
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	switch args[0] {
	case "watch":
		if err := watchCommand(ctx, deps, logger); err != nil {
			log.Fatal("Watch failed", "err", err)
		}
	case "stats":
		if err := statsCommand(ctx, deps); err != nil {
			log.Fatal("Stats failed", "err", err)
		}
	case "add-contact":
		if err := addContactCommand(ctx, deps, args[1:]); err != nil {
			log.Fatal("Add contact failed", "err", err)
		}
	case "list-contacts":
		if err := listContactsCommand(ctx, deps, args[1:]); err != nil {
			log.Fatal("List contacts failed", "err", err)
		}
	default:
		fmt.Printf("Unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

// watchCommand activates the CRM module and streams change notifications
// until interrupted.
func watchCommand(ctx context.Context, deps engine.Deps, logger *log.Logger) error {
	c := crm.New(deps)
	views := crm.NewViews(c)

	cancelWatch := c.Contacts.Watch(func() {
		logger.Info("contacts changed",
			"count", len(c.Contacts.Items()),
			"high_score", len(views.HighScoreContacts.Get()),
			"loading", c.Contacts.Loading())
	})
	defer cancelWatch()

	c.Activate(ctx)
	defer c.Deactivate()
	c.Refresh(ctx)

	<-ctx.Done()
	return nil
}

func statsCommand(ctx context.Context, deps engine.Deps) error {
	c := crm.New(deps)
	if err := c.Stats.Fetch(ctx); err != nil {
		return err
	}
	s := c.Stats.Get()
	fmt.Printf("Contacts:  %d\n", s.TotalContacts)
	fmt.Printf("Companies: %d\n", s.TotalCompanies)
	fmt.Printf("Deals:     %d open of %d\n", s.OpenDeals, s.TotalDeals)
	fmt.Printf("Pipeline:  %d\n", s.PipelineValue)
	fmt.Printf("Won:       %d\n", s.WonValue)
	return nil
}

func addContactCommand(ctx context.Context, deps engine.Deps, args []string) error {
	fs := flag.NewFlagSet("add-contact", flag.ExitOnError)
	name := fs.String("name", "", "Contact name (required)")
	email := fs.String("email", "", "Contact email")
	status := fs.String("status", "", "Contact status (lead, prospect, customer)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	c := crm.New(deps)
	contact, err := c.CreateContact(ctx, crm.CreateContactInput{
		Name:   *name,
		Email:  *email,
		Status: *status,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Created contact %s (%s)\n", contact.Name, contact.ID)
	return nil
}

func listContactsCommand(ctx context.Context, deps engine.Deps, args []string) error {
	fs := flag.NewFlagSet("list-contacts", flag.ExitOnError)
	status := fs.String("status", "", "Filter by status")
	search := fs.String("search", "", "Search name or email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c := crm.New(deps)
	if *status != "" {
		c.SetContactStatus(ctx, *status)
	}
	if *search != "" {
		c.SetSearch(ctx, *search)
	}
	if *status == "" && *search == "" {
		if err := c.Contacts.Fetch(ctx, nil); err != nil {
			return err
		}
	}
	if msg := c.Contacts.Err(); msg != "" {
		return fmt.Errorf("fetch failed: %s", msg)
	}

	for _, contact := range c.Contacts.Items() {
		fav := " "
		if contact.Favorite {
			fav = "*"
		}
		fmt.Printf("%s %-28s %-28s %-10s %3d\n", fav, contact.Name, contact.Email, contact.Status, contact.Score)
	}
	return nil
}

func printUsage() {
	fmt.Println("officesync - client sync layer for the office suite")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  officesync [flags] <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  watch          Activate the CRM module and stream changes")
	fmt.Println("  stats          Print the CRM dashboard aggregates")
	fmt.Println("  add-contact    Create a contact (--name, --email, --status)")
	fmt.Println("  list-contacts  List contacts (--status, --search)")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --version      Show version and exit")
	fmt.Println("  --db-path      Override the database location")
}
