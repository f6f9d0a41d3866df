package mysql

import (
	"errors"
	"strings"
	"testing"
)

func TestAuditSchema(t *testing.T) {
	ddl, err := AuditSchema("probe_audit")
	if err != nil {
		t.Fatalf("audit schema: %v", err)
	}
	for _, fragment := range []string{"CREATE TABLE IF NOT EXISTS probe_audit", "correlation_id", "tx_depth", "tx_state", "tx_id"} {
		if !strings.Contains(ddl, fragment) {
			t.Fatalf("expected %q in schema", fragment)
		}
	}
}

func TestBusinessSchema(t *testing.T) {
	ddl, err := BusinessSchema("probe_business")
	if err != nil {
		t.Fatalf("business schema: %v", err)
	}
	for _, fragment := range []string{"CREATE TABLE IF NOT EXISTS probe_business", "message", "correlation_id", "tx_details"} {
		if !strings.Contains(ddl, fragment) {
			t.Fatalf("expected %q in schema", fragment)
		}
	}
}

func TestSchemaInvalidName(t *testing.T) {
	if _, err := AuditSchema("bad;name"); !errors.Is(err, ErrInvalidTableName) {
		t.Fatalf("expected ErrInvalidTableName, got %v", err)
	}
	if _, err := BusinessSchema(""); !errors.Is(err, ErrTableNameRequired) {
		t.Fatalf("expected ErrTableNameRequired, got %v", err)
	}
}
