// Package audit holds the append-only log of dispatch decisions. An Entry is
// written for every sync materialization, assignment, status change,
// completion and notification attempt, and is never updated or deleted.
package audit
