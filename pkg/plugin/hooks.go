// File: pkg/plugin/hooks.go
package plugin

import (
	"context"
	"time"
)

// Op names the session operation that issued a statement
type Op string

const (
	OpCreate  Op = "create"
	OpRead    Op = "read"
	OpUpdate  Op = "update"
	OpDelete  Op = "delete"
	OpSchema  Op = "schema"
	OpMigrate Op = "migrate"
)

// Event describes one executed statement
type Event struct {
	Op       Op
	Table    string
	Query    string
	Args     []any
	Rows     int64 // rows affected or returned
	Duration time.Duration
	Err      error
}

// Hook observes statements after they run. Hooks cannot alter the outcome.
type Hook interface {
	AfterStatement(ctx context.Context, ev Event)
}

// HookFunc adapts a plain function to Hook
type HookFunc func(ctx context.Context, ev Event)

func (f HookFunc) AfterStatement(ctx context.Context, ev Event) { f(ctx, ev) }

// Hooks fans an event out to several hooks in order
type Hooks []Hook

func (hs Hooks) AfterStatement(ctx context.Context, ev Event) {
	for _, h := range hs {
		if h != nil {
			h.AfterStatement(ctx, ev)
		}
	}
}
