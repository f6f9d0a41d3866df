package mysql

import (
	"context"
	"database/sql"
	"errors"
	"testing"
)

func TestNewScoperValidation(t *testing.T) {
	if _, err := NewScoper(nil); !errors.Is(err, ErrDBRequired) {
		t.Fatalf("expected ErrDBRequired, got %v", err)
	}
	if _, err := NewScoper(&sql.DB{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := NewScoper(&sql.DB{}, WithAuditTable("probe;drop")); !errors.Is(err, ErrInvalidTableName) {
		t.Fatalf("expected ErrInvalidTableName, got %v", err)
	}
}

func TestScopeDepthAndExecutor(t *testing.T) {
	exec := &fakeExecutor{}
	scope := &Scope{exec: exec, depth: 2}
	if scope.Depth() != 2 {
		t.Fatalf("expected depth 2, got %d", scope.Depth())
	}
	if scope.Executor() != exec {
		t.Fatalf("expected configured executor")
	}
}

func TestScopeFinishedTwice(t *testing.T) {
	scope := &Scope{done: true}
	if err := scope.Complete(); !errors.Is(err, ErrScopeFinished) {
		t.Fatalf("expected ErrScopeFinished, got %v", err)
	}
	if err := scope.Abandon(); !errors.Is(err, ErrScopeFinished) {
		t.Fatalf("expected ErrScopeFinished, got %v", err)
	}
	if _, err := scope.Nest(context.Background()); !errors.Is(err, ErrScopeFinished) {
		t.Fatalf("expected ErrScopeFinished, got %v", err)
	}
}
