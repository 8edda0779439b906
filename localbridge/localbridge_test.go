// ABOUTME: Tests for the SQLite-backed local bridge
// ABOUTME: Exercises the command dispatch end to end against a temp database
package localbridge

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/harperreed/officesync/bridge"
	"github.com/harperreed/officesync/events"
	"github.com/harperreed/officesync/models"
)

func openTestBridge(t *testing.T) (*Bridge, *events.Bus) {
	t.Helper()
	bus := events.NewBus()
	b, err := Open(filepath.Join(t.TempDir(), "test.db"), bus, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b, bus
}

func TestOpenInitializesSchema(t *testing.T) {
	b, _ := openTestBridge(t)

	var count int
	err := b.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table'").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query tables: %v", err)
	}
	if count < 5 {
		t.Errorf("Expected at least 5 tables, got %d", count)
	}

	var mode string
	if err := b.db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("Failed to query journal mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("Expected WAL mode, got %s", mode)
	}
}

func TestOpenInvalidPath(t *testing.T) {
	_, err := Open("/proc/nonexistent/cannot/create/test.db", nil, nil)
	if err == nil {
		t.Error("Expected error for invalid path, but Open succeeded")
	}
}

func TestUnknownCommand(t *testing.T) {
	b, _ := openTestBridge(t)

	_, err := b.Call(context.Background(), "crm_fly_to_moon", nil)
	if !errors.Is(err, bridge.ErrUnknownCommand) {
		t.Errorf("Expected ErrUnknownCommand, got %v", err)
	}
}

func TestContactLifecycle(t *testing.T) {
	b, bus := openTestBridge(t)
	ctx := context.Background()

	var created int
	cancel, err := bus.Subscribe("crm-contact-created", func(json.RawMessage) { created++ })
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer cancel()

	contact, err := bridge.Invoke[models.Contact](ctx, b, "crm_create_contact", map[string]any{
		"name":  "Ada Lovelace",
		"email": "ada@example.com",
	})
	if err != nil {
		t.Fatalf("crm_create_contact failed: %v", err)
	}
	if contact.ID == "" {
		t.Fatal("Expected a generated contact ID")
	}
	if contact.Status != models.ContactLead {
		t.Errorf("Expected default status lead, got %s", contact.Status)
	}
	if created != 1 {
		t.Errorf("Expected 1 created push, got %d", created)
	}

	contacts, err := bridge.Invoke[[]models.Contact](ctx, b, "crm_get_contacts", nil)
	if err != nil {
		t.Fatalf("crm_get_contacts failed: %v", err)
	}
	if len(contacts) != 1 || contacts[0].Name != "Ada Lovelace" {
		t.Errorf("Unexpected contacts: %+v", contacts)
	}

	score := 90
	updated, err := bridge.Invoke[models.Contact](ctx, b, "crm_update_contact", map[string]any{
		"id":     contact.ID,
		"status": models.ContactCustomer,
		"score":  score,
	})
	if err != nil {
		t.Fatalf("crm_update_contact failed: %v", err)
	}
	if updated.Status != models.ContactCustomer || updated.Score != score {
		t.Errorf("Update not applied: %+v", updated)
	}

	ok, err := bridge.Invoke[bool](ctx, b, "crm_delete_contact", map[string]any{"id": contact.ID})
	if err != nil {
		t.Fatalf("crm_delete_contact failed: %v", err)
	}
	if !ok {
		t.Error("Expected delete to succeed for a contact without deals")
	}
}

func TestDeleteContactWithOpenDealRefused(t *testing.T) {
	b, _ := openTestBridge(t)
	ctx := context.Background()

	contact, err := bridge.Invoke[models.Contact](ctx, b, "crm_create_contact", map[string]any{"name": "Grace"})
	if err != nil {
		t.Fatalf("crm_create_contact failed: %v", err)
	}
	_, err = bridge.Invoke[models.Deal](ctx, b, "crm_create_deal", map[string]any{
		"title":      "Big renewal",
		"amount":     250000,
		"contact_id": contact.ID,
	})
	if err != nil {
		t.Fatalf("crm_create_deal failed: %v", err)
	}

	ok, err := bridge.Invoke[bool](ctx, b, "crm_delete_contact", map[string]any{"id": contact.ID})
	if err != nil {
		t.Fatalf("crm_delete_contact failed: %v", err)
	}
	if ok {
		t.Error("Expected delete refusal for a contact with an open deal")
	}

	contacts, err := bridge.Invoke[[]models.Contact](ctx, b, "crm_get_contacts", nil)
	if err != nil {
		t.Fatalf("crm_get_contacts failed: %v", err)
	}
	if len(contacts) != 1 {
		t.Errorf("Contact should survive a refused delete, got %d contacts", len(contacts))
	}
}

func TestDealStageMoveUpdatesStats(t *testing.T) {
	b, _ := openTestBridge(t)
	ctx := context.Background()

	deal, err := bridge.Invoke[models.Deal](ctx, b, "crm_create_deal", map[string]any{
		"title":  "Enterprise plan",
		"amount": 500000,
		"stage":  models.StageProposal,
	})
	if err != nil {
		t.Fatalf("crm_create_deal failed: %v", err)
	}
	if deal.Probability != 50 {
		t.Errorf("Expected proposal probability 50, got %d", deal.Probability)
	}

	stats, err := bridge.Invoke[models.CRMStats](ctx, b, "crm_get_stats", nil)
	if err != nil {
		t.Fatalf("crm_get_stats failed: %v", err)
	}
	if stats.OpenDeals != 1 || stats.PipelineValue != 500000 {
		t.Errorf("Unexpected stats before close: %+v", stats)
	}

	won, err := bridge.Invoke[models.Deal](ctx, b, "crm_update_deal_stage", map[string]any{
		"id":    deal.ID,
		"stage": models.StageClosedWon,
	})
	if err != nil {
		t.Fatalf("crm_update_deal_stage failed: %v", err)
	}
	if won.Probability != 100 {
		t.Errorf("Expected closed-won probability 100, got %d", won.Probability)
	}

	stats, err = bridge.Invoke[models.CRMStats](ctx, b, "crm_get_stats", nil)
	if err != nil {
		t.Fatalf("crm_get_stats failed: %v", err)
	}
	if stats.OpenDeals != 0 || stats.WonValue != 500000 {
		t.Errorf("Unexpected stats after close: %+v", stats)
	}

	// Winning a deal leaves a notification behind.
	notifications, err := bridge.Invoke[[]models.Notification](ctx, b, "crm_get_notifications", nil)
	if err != nil {
		t.Fatalf("crm_get_notifications failed: %v", err)
	}
	if len(notifications) != 1 || notifications[0].Title != "Deal won" {
		t.Errorf("Unexpected notifications: %+v", notifications)
	}
}

func TestContactSearchAndStatusFilter(t *testing.T) {
	b, _ := openTestBridge(t)
	ctx := context.Background()

	for _, in := range []map[string]any{
		{"name": "Ada Lovelace", "email": "ada@example.com", "status": models.ContactCustomer},
		{"name": "Grace Hopper", "email": "grace@example.com", "status": models.ContactLead},
		{"name": "Edsger Dijkstra", "email": "edsger@example.com", "status": models.ContactCustomer},
	} {
		if _, err := bridge.Invoke[models.Contact](ctx, b, "crm_create_contact", in); err != nil {
			t.Fatalf("crm_create_contact failed: %v", err)
		}
	}

	customers, err := bridge.Invoke[[]models.Contact](ctx, b, "crm_get_contacts", map[string]any{"status": models.ContactCustomer})
	if err != nil {
		t.Fatalf("crm_get_contacts failed: %v", err)
	}
	if len(customers) != 2 {
		t.Errorf("Expected 2 customers, got %d", len(customers))
	}

	found, err := bridge.Invoke[[]models.Contact](ctx, b, "crm_get_contacts", map[string]any{"search": "grace"})
	if err != nil {
		t.Fatalf("crm_get_contacts failed: %v", err)
	}
	if len(found) != 1 || found[0].Name != "Grace Hopper" {
		t.Errorf("Unexpected search result: %+v", found)
	}
}
