// Package store keeps a history of simulation runs in SQLite: one row per
// run, one per evaluated epoch, and the best network of every run.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"github.com/baldhumanity/neatsim/neat"
	"github.com/baldhumanity/neatsim/neat/nn"
)

// Run describes one stored run.
type Run struct {
	ID        string
	Task      string
	Seed      int64
	CreatedAt time.Time
}

// EpochRecord is the stored summary of one epoch.
type EpochRecord struct {
	Epoch         int
	Genomes       int
	Species       int
	BestFitness   float64
	MeanFitness   float64
	StdevFitness  float64
	MedianFitness float64
	MeanGenes     float64
}

// Champion is the best network stored for a run.
type Champion struct {
	Epoch   int
	Fitness float64
	Network *nn.Network
}

// Store is a SQLite backed run history. It is safe for concurrent use.
type Store struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

// Open opens or creates the database at path and its tables.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", path, err)
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return &Store{path: path, db: db}, nil
}

// CreateRun records a new run and returns its id. The parameters are kept
// as YAML for reference.
func (s *Store) CreateRun(ctx context.Context, task string, seed int64, params *neat.Parameters) (string, error) {
	db, err := s.getDB()
	if err != nil {
		return "", err
	}
	var paramsText []byte
	if params != nil {
		if paramsText, err = yaml.Marshal(params); err != nil {
			return "", fmt.Errorf("encode parameters: %w", err)
		}
	}

	id := uuid.NewString()
	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, task, seed, created_at, parameters)
		VALUES (?, ?, ?, ?, ?)
	`, id, task, seed, time.Now().UTC().Format(time.RFC3339Nano), string(paramsText))
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// GetRun looks up a run by id.
func (s *Store) GetRun(ctx context.Context, runID string) (Run, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return Run{}, false, err
	}
	var (
		run     Run
		created string
	)
	err = db.QueryRowContext(ctx, `SELECT id, task, seed, created_at FROM runs WHERE id = ?`, runID).
		Scan(&run.ID, &run.Task, &run.Seed, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, false, nil
		}
		return Run{}, false, err
	}
	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return Run{}, false, fmt.Errorf("run %s: bad created_at: %w", runID, err)
	}
	return run, true, nil
}

// Runs lists the stored runs, oldest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT id, task, seed, created_at FROM runs ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			run     Run
			created string
		)
		if err := rows.Scan(&run.ID, &run.Task, &run.Seed, &created); err != nil {
			return nil, err
		}
		if run.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("run %s: bad created_at: %w", run.ID, err)
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// RecordEpoch stores the statistics of one epoch, replacing an earlier
// record of the same epoch.
func (s *Store) RecordEpoch(ctx context.Context, runID string, stats *neat.EpochStats) error {
	if stats == nil {
		return errors.New("epoch stats are nil")
	}
	db, err := s.getDB()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO epochs (run_id, epoch, genomes, species, best_fitness, mean_fitness,
			stdev_fitness, median_fitness, mean_genes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, epoch) DO UPDATE SET
			genomes = excluded.genomes,
			species = excluded.species,
			best_fitness = excluded.best_fitness,
			mean_fitness = excluded.mean_fitness,
			stdev_fitness = excluded.stdev_fitness,
			median_fitness = excluded.median_fitness,
			mean_genes = excluded.mean_genes
	`, runID, stats.Epoch, stats.Genomes, stats.Species, stats.BestFitness, stats.MeanFitness,
		stats.StdevFitness, stats.MedianFitness, stats.MeanGenes)
	if err != nil {
		return fmt.Errorf("record epoch %d of run %s: %w", stats.Epoch, runID, err)
	}
	return nil
}

// Epochs returns the stored epochs of a run in order.
func (s *Store) Epochs(ctx context.Context, runID string) ([]EpochRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `
		SELECT epoch, genomes, species, best_fitness, mean_fitness, stdev_fitness,
			median_fitness, mean_genes
		FROM epochs WHERE run_id = ? ORDER BY epoch
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EpochRecord
	for rows.Next() {
		var r EpochRecord
		if err := rows.Scan(&r.Epoch, &r.Genomes, &r.Species, &r.BestFitness, &r.MeanFitness,
			&r.StdevFitness, &r.MedianFitness, &r.MeanGenes); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveChampion stores the phenotype of the best genome of a run, replacing
// the previous champion.
func (s *Store) SaveChampion(ctx context.Context, runID string, epoch int, g *neat.Genome) error {
	if g == nil {
		return neat.ErrNilGenome
	}
	db, err := s.getDB()
	if err != nil {
		return err
	}
	var payload bytes.Buffer
	if err := g.GetNetwork().Encode(&payload); err != nil {
		return fmt.Errorf("encode champion of run %s: %w", runID, err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO champions (run_id, epoch, fitness, network)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			epoch = excluded.epoch,
			fitness = excluded.fitness,
			network = excluded.network
	`, runID, epoch, g.Fitness, payload.Bytes())
	if err != nil {
		return fmt.Errorf("save champion of run %s: %w", runID, err)
	}
	return nil
}

// Champion loads the stored champion of a run.
func (s *Store) Champion(ctx context.Context, runID string) (Champion, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return Champion{}, false, err
	}
	var (
		c       Champion
		payload []byte
	)
	err = db.QueryRowContext(ctx, `SELECT epoch, fitness, network FROM champions WHERE run_id = ?`, runID).
		Scan(&c.Epoch, &c.Fitness, &payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Champion{}, false, nil
		}
		return Champion{}, false, err
	}
	if c.Network, err = nn.Decode(bytes.NewReader(payload), nil); err != nil {
		return Champion{}, false, fmt.Errorf("decode champion of run %s: %w", runID, err)
	}
	return c, true, nil
}

// Close closes the database. Later calls fail.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is closed")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			task TEXT NOT NULL,
			seed INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			parameters TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS epochs (
			run_id TEXT NOT NULL,
			epoch INTEGER NOT NULL,
			genomes INTEGER NOT NULL,
			species INTEGER NOT NULL,
			best_fitness REAL NOT NULL,
			mean_fitness REAL NOT NULL,
			stdev_fitness REAL NOT NULL,
			median_fitness REAL NOT NULL,
			mean_genes REAL NOT NULL,
			PRIMARY KEY (run_id, epoch)
		);
		CREATE TABLE IF NOT EXISTS champions (
			run_id TEXT PRIMARY KEY,
			epoch INTEGER NOT NULL,
			fitness REAL NOT NULL,
			network BLOB NOT NULL
		);
	`)
	return err
}
