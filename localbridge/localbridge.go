// ABOUTME: SQLite-backed command bridge for running against local data
// ABOUTME: Dispatches the CRM command set and publishes push events on mutations
package localbridge

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"

	"github.com/harperreed/officesync/bridge"
	"github.com/harperreed/officesync/events"
)

// Bridge serves the CRM command set from a local SQLite database. It
// satisfies bridge.Caller, so the sync engine runs against it unchanged, and
// it publishes the same push topics a remote backend would.
type Bridge struct {
	db  *sql.DB
	bus *events.Bus
	log *log.Logger
}

// Open opens (or creates) the database at path with WAL mode and initializes
// the schema. Mutations publish push events on bus; a nil bus disables push.
func Open(path string, bus *events.Bus, logger *log.Logger) (*Bridge, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	// Single connection avoids SQLite database-locked errors.
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	if logger == nil {
		logger = log.Default()
	}
	return &Bridge{db: db, bus: bus, log: logger.With("component", "localbridge")}, nil
}

// Close closes the underlying database.
func (b *Bridge) Close() error { return b.db.Close() }

// Call dispatches command with args. Read commands return the entity list or
// aggregate; mutations return the stored entity, deletes return a boolean.
func (b *Bridge) Call(_ context.Context, command string, args any) (json.RawMessage, error) {
	switch command {
	case "crm_get_contacts":
		return b.listContacts(args)
	case "crm_create_contact":
		return b.createContact(args)
	case "crm_update_contact":
		return b.updateContact(args)
	case "crm_delete_contact":
		return b.deleteContact(args)
	case "crm_toggle_favorite":
		return b.toggleFavorite(args)
	case "crm_get_companies":
		return b.listCompanies()
	case "crm_create_company":
		return b.createCompany(args)
	case "crm_delete_company":
		return b.deleteCompany(args)
	case "crm_get_deals":
		return b.listDeals(args)
	case "crm_create_deal":
		return b.createDeal(args)
	case "crm_update_deal_stage":
		return b.updateDealStage(args)
	case "crm_delete_deal":
		return b.deleteDeal(args)
	case "crm_get_activities":
		return b.listActivities()
	case "crm_create_activity":
		return b.createActivity(args)
	case "crm_complete_activity":
		return b.completeActivity(args)
	case "crm_delete_activity":
		return b.deleteActivity(args)
	case "crm_get_notifications":
		return b.listNotifications()
	case "crm_get_stats":
		return b.stats()
	default:
		return nil, fmt.Errorf("%w: %s", bridge.ErrUnknownCommand, command)
	}
}

// decode round-trips args through JSON into the command's input type, the
// same shape a remote bridge would see on the wire.
func decode[T any](args any) (T, error) {
	var in T
	raw, err := json.Marshal(args)
	if err != nil {
		return in, err
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return in, err
	}
	return in, nil
}

func respond(v any) (json.RawMessage, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// publish emits a push event; dropped when the bridge runs without a bus.
func (b *Bridge) publish(topic string, v any) {
	if b.bus == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		b.log.Warn("push payload marshal failed", "topic", topic, "err", err)
		return
	}
	b.bus.Publish(topic, raw)
}
