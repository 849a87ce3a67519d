package store

import (
	"context"

	"kpss-tercih/internal/snapshot"
)

// MockSeeder is an in-memory Seeder for tests.
type MockSeeder struct {
	MigrateErr error
	SeedErr    error

	Migrated bool
	Seeded   *snapshot.Snapshot
	Closed   bool
}

// Migrate records the call.
func (m *MockSeeder) Migrate(_ context.Context) error {
	if m.MigrateErr != nil {
		return m.MigrateErr
	}
	m.Migrated = true
	return nil
}

// Seed remembers snap and reports the rows it would load.
func (m *MockSeeder) Seed(_ context.Context, snap *snapshot.Snapshot) (SeedStats, error) {
	if m.SeedErr != nil {
		return SeedStats{}, m.SeedErr
	}
	m.Seeded = snap
	rows := buildSeedRows(snap.Qualifications(), snap.Positions())
	return SeedStats{
		Qualifications:     int64(len(rows.qualifications)),
		Positions:          int64(len(rows.positions)),
		Links:              int64(len(rows.links)),
		DuplicatePositions: rows.duplicatePositions,
		UnknownCodes:       rows.unknownCodes,
	}, nil
}

// Counts reports the sizes of the last seeded snapshot.
func (m *MockSeeder) Counts(_ context.Context) (map[string]int64, error) {
	counts := map[string]int64{QualificationsTable: 0, PositionsTable: 0, PositionQualificationsTable: 0}
	if m.Seeded != nil {
		rows := buildSeedRows(m.Seeded.Qualifications(), m.Seeded.Positions())
		counts[QualificationsTable] = int64(len(rows.qualifications))
		counts[PositionsTable] = int64(len(rows.positions))
		counts[PositionQualificationsTable] = int64(len(rows.links))
	}
	return counts, nil
}

// Close records the call.
func (m *MockSeeder) Close() {
	m.Closed = true
}
