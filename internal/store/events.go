package store

import "curator-cli/internal/model"

// Event is the change notification emitted after every successful mutation.
// Payload shapes are concrete per kind so subscribers can type-switch instead
// of decoding loosely typed arguments.
//
// Emission is synchronous and happens after the in-memory mutation AND the
// persistence attempt: a subscriber observing an event may assume the
// document write has already been tried.
type Event interface {
	EventKind() string
}

type DataSaved struct{}

type DataSaveError struct {
	Err error
}

type DataMigrated struct {
	FromVersion string
}

type ProjectCreated struct {
	ID string
}

type ProjectSwitched struct {
	ID string
}

type ProjectDeleted struct {
	ID string
}

type CellAdded struct {
	ProjectID string
	Cell      model.Cell
}

type CellUpdated struct {
	ProjectID string
	ID        int
}

type CellDeleted struct {
	ProjectID string
	ID        int
}

type CellsReordered struct {
	ProjectID string
}

type MainPromptUpdated struct {
	ProjectID string
}

func (DataSaved) EventKind() string         { return "data:saved" }
func (DataSaveError) EventKind() string     { return "data:save-error" }
func (DataMigrated) EventKind() string      { return "data:migrated" }
func (ProjectCreated) EventKind() string    { return "project:created" }
func (ProjectSwitched) EventKind() string   { return "project:switched" }
func (ProjectDeleted) EventKind() string    { return "project:deleted" }
func (CellAdded) EventKind() string         { return "cell:added" }
func (CellUpdated) EventKind() string       { return "cell:updated" }
func (CellDeleted) EventKind() string       { return "cell:deleted" }
func (CellsReordered) EventKind() string    { return "cells:reordered" }
func (MainPromptUpdated) EventKind() string { return "mainprompt:updated" }

// Handler receives events in subscription order. A panicking handler is
// recovered and logged; remaining handlers still run.
type Handler func(Event)

func (s *Store) Subscribe(h Handler) {
	s.handlers = append(s.handlers, h)
}

func (s *Store) emit(events ...Event) {
	for _, ev := range events {
		for _, h := range s.handlers {
			s.invoke(h, ev)
		}
	}
}

func (s *Store) invoke(h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("event", ev.EventKind()).Interface("panic", r).Msg("event handler panicked")
		}
	}()
	h(ev)
}
