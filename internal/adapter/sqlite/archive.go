// Package sqlite persists constraint snapshots to an on-disk archive for
// retrospective case studies. The archive is write-once per (storm,
// timestamp): the database enforces the same strict-ordering invariant the
// in-memory timelines do, so a reloaded timeline is identical to the one
// that produced it.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/couchcryptid/cyclone-constraint-service/internal/domain"
)

// timeLayout is RFC 3339 with fixed-width nanoseconds. Timestamps are TEXT
// columns ordered and keyed lexicographically, and RFC3339Nano trims trailing
// fractional zeros, which breaks lexicographic order for sub-second values
// ("...00.5Z" sorts before "...00Z"). Fixed width keeps string order equal to
// time order unconditionally.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Archive stores snapshots in a sqlite database.
// It implements pipeline.SnapshotArchiver.
type Archive struct {
	db *sql.DB
}

// Open opens (creating if needed) the archive database at path and ensures
// the schema exists.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			storm_id        TEXT NOT NULL,
			storm_name      TEXT,
			timestamp       TEXT NOT NULL,
			raw_indicative  REAL NOT NULL,
			raw_relational  REAL NOT NULL,
			raw_semantic    REAL NOT NULL,
			indicative      REAL NOT NULL,
			relational      REAL NOT NULL,
			semantic        REAL NOT NULL,
			admissibility   REAL NOT NULL,
			gradient        REAL,
			gradient_hazard INTEGER NOT NULL,
			regime          TEXT NOT NULL,
			refusal_risk    TEXT NOT NULL,
			summary         TEXT NOT NULL,
			intensity_kt    REAL NOT NULL,
			forecast_kt     REAL,
			processed_at    TEXT NOT NULL,
			PRIMARY KEY (storm_id, timestamp)
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create snapshots table: %w", err)
	}

	return &Archive{db: db}, nil
}

// ArchiveSnapshot inserts one snapshot. Snapshots are immutable, so a
// conflicting (storm, timestamp) pair is ignored rather than updated; this
// makes replayed batches idempotent.
func (a *Archive) ArchiveSnapshot(ctx context.Context, snap domain.ConstraintSnapshot) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO snapshots (
			storm_id, storm_name, timestamp,
			raw_indicative, raw_relational, raw_semantic,
			indicative, relational, semantic,
			admissibility, gradient, gradient_hazard,
			regime, refusal_risk, summary,
			intensity_kt, forecast_kt, processed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (storm_id, timestamp) DO NOTHING`,
		snap.StormID, snap.StormName, snap.Timestamp.UTC().Format(timeLayout),
		snap.RawIndicative, snap.RawRelational, snap.RawSemantic,
		snap.Indicative, snap.Relational, snap.Semantic,
		snap.Admissibility, nullFloat(snap.Gradient), snap.GradientHazard,
		string(snap.Regime), string(snap.RefusalRisk), snap.Summary,
		snap.IntensityKt, nullFloat(snap.ForecastKt), snap.ProcessedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("archive snapshot %s@%s: %w", snap.StormID, snap.Timestamp.Format(time.RFC3339), err)
	}
	return nil
}

// LoadTimeline reads a storm's archived snapshots in chronological order and
// verifies the strict-ordering invariant survived the round trip.
func (a *Archive) LoadTimeline(ctx context.Context, stormID string) ([]domain.ConstraintSnapshot, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT storm_id, storm_name, timestamp,
			raw_indicative, raw_relational, raw_semantic,
			indicative, relational, semantic,
			admissibility, gradient, gradient_hazard,
			regime, refusal_risk, summary,
			intensity_kt, forecast_kt, processed_at
		FROM snapshots WHERE storm_id = ? ORDER BY timestamp`, stormID)
	if err != nil {
		return nil, fmt.Errorf("load timeline for %s: %w", stormID, err)
	}
	defer rows.Close()

	var snaps []domain.ConstraintSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("load timeline for %s: %w", stormID, err)
		}
		if n := len(snaps); n > 0 && !snap.Timestamp.After(snaps[n-1].Timestamp) {
			return nil, &domain.SequenceError{
				StormID:   stormID,
				Last:      snaps[n-1].Timestamp,
				Attempted: snap.Timestamp,
			}
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

func (a *Archive) Close() error {
	return a.db.Close()
}

func scanSnapshot(rows *sql.Rows) (domain.ConstraintSnapshot, error) {
	var (
		snap                  domain.ConstraintSnapshot
		ts, processedAt       string
		gradient, forecastKt  sql.NullFloat64
		regime, refusalRisk   string
	)
	err := rows.Scan(
		&snap.StormID, &snap.StormName, &ts,
		&snap.RawIndicative, &snap.RawRelational, &snap.RawSemantic,
		&snap.Indicative, &snap.Relational, &snap.Semantic,
		&snap.Admissibility, &gradient, &snap.GradientHazard,
		&regime, &refusalRisk, &snap.Summary,
		&snap.IntensityKt, &forecastKt, &processedAt,
	)
	if err != nil {
		return domain.ConstraintSnapshot{}, err
	}

	if snap.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
		return domain.ConstraintSnapshot{}, fmt.Errorf("parse timestamp %q: %w", ts, err)
	}
	if snap.ProcessedAt, err = time.Parse(time.RFC3339Nano, processedAt); err != nil {
		return domain.ConstraintSnapshot{}, fmt.Errorf("parse processed_at %q: %w", processedAt, err)
	}
	if gradient.Valid {
		snap.Gradient = &gradient.Float64
	}
	if forecastKt.Valid {
		snap.ForecastKt = &forecastKt.Float64
	}
	snap.Regime = domain.Regime(regime)
	snap.RefusalRisk = domain.RefusalRisk(refusalRisk)
	return snap, nil
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
