// Package database persists stable-sign detection events for operator
// analytics. It is optional: a nil *Store is a no-op, and writes happen
// off the frame path so the store can never slow a session down.
package database

import (
	"database/sql"
	"embed"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

type detectionEvent struct {
	SessionID  string
	Sign       string
	Confidence float64
	DetectedAt time.Time
}

// Store writes detection events to Postgres through a single background
// writer. The inbound channel is bounded; when it is full new events are
// discarded rather than blocking a session.
type Store struct {
	db     *sql.DB
	events chan detectionEvent
	done   chan struct{}
}

// Open connects, runs migrations and starts the writer.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		db.Close()
		return nil, err
	}
	if err := goose.Up(db, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s := &Store{
		db:     db,
		events: make(chan detectionEvent, 256),
		done:   make(chan struct{}),
	}
	go s.writeLoop()

	log.Println("Detection event store initialized")
	return s, nil
}

// RecordDetection queues one new-stable-sign event. Never blocks; safe on
// a nil receiver so callers do not need to care whether the store is
// configured.
func (s *Store) RecordDetection(sessionID, sign string, confidence float64) {
	if s == nil {
		return
	}
	select {
	case s.events <- detectionEvent{
		SessionID:  sessionID,
		Sign:       sign,
		Confidence: confidence,
		DetectedAt: time.Now(),
	}:
	default:
		// Analytics are best effort; losing an event beats blocking
		// the frame path.
	}
}

func (s *Store) writeLoop() {
	defer close(s.done)
	for ev := range s.events {
		_, err := s.db.Exec(
			"INSERT INTO detections (session_id, sign, confidence, detected_at) VALUES ($1, $2, $3, $4)",
			ev.SessionID, ev.Sign, ev.Confidence, ev.DetectedAt,
		)
		if err != nil {
			log.Printf("Failed to save detection event: %v", err)
		}
	}
}

// Close drains queued events and shuts the connection pool down.
func (s *Store) Close() {
	if s == nil {
		return
	}
	close(s.events)
	<-s.done
	if err := s.db.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	} else {
		log.Println("DB closed")
	}
}
