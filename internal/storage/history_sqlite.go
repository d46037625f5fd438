package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const historyFileName = "history.db"

// Run is one finished countdown, completed normally or stopped early.
type Run struct {
	ID        int64
	StartedAt time.Time
	EndedAt   time.Time
	Duration  time.Duration
	Loops     int
	Completed bool
}

// Stats summarizes recorded runs.
type Stats struct {
	TotalRuns     int
	CompletedRuns int
	TotalSeconds  int
	TodayRuns     int
}

// History stores finished runs in SQLite.
type History struct {
	db *sql.DB
}

// OpenHistory opens the history database for appName under the user config
// dir, creating it if needed.
func OpenHistory(appName string) (*History, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolve user config dir: %w", err)
	}
	path := filepath.Join(configDir, appName, historyFileName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}
	return OpenHistoryAt(path)
}

// OpenHistoryAt opens a history database at an explicit path.
func OpenHistoryAt(path string) (*History, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping history db: %w", err)
	}

	history := &History{db: db}
	if err := history.initTables(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return history, nil
}

// Close closes the database.
func (history *History) Close() error {
	return history.db.Close()
}

// RecordRun inserts a finished run and fills in its ID.
func (history *History) RecordRun(run *Run) error {
	result, err := history.db.Exec(`
        INSERT INTO runs (started_at, ended_at, duration_seconds, loops, completed)
        VALUES (?, ?, ?, ?, ?)
    `, run.StartedAt, run.EndedAt, int(run.Duration/time.Second), run.Loops, run.Completed)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("resolve run id: %w", err)
	}
	run.ID = id
	return nil
}

// RecentRuns returns the latest runs, newest first.
func (history *History) RecentRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := history.db.Query(`
        SELECT id, started_at, ended_at, duration_seconds, loops, completed
        FROM runs
        ORDER BY started_at DESC, id DESC
        LIMIT ?
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		var seconds int
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.EndedAt, &seconds, &run.Loops, &run.Completed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Duration = time.Duration(seconds) * time.Second
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetStats returns overall totals plus today's run count.
func (history *History) GetStats() (*Stats, error) {
	stats := &Stats{}
	err := history.db.QueryRow(`
        SELECT
            COUNT(*),
            COALESCE(SUM(CASE WHEN completed THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(duration_seconds), 0)
        FROM runs
    `).Scan(&stats.TotalRuns, &stats.CompletedRuns, &stats.TotalSeconds)
	if err != nil {
		return nil, fmt.Errorf("query run totals: %w", err)
	}

	today := time.Now().Truncate(24 * time.Hour)
	err = history.db.QueryRow(`
        SELECT COUNT(*) FROM runs WHERE started_at >= ?
    `, today).Scan(&stats.TodayRuns)
	if err != nil {
		return nil, fmt.Errorf("query today's runs: %w", err)
	}
	return stats, nil
}

func (history *History) initTables() error {
	_, err := history.db.Exec(`
        CREATE TABLE IF NOT EXISTS runs (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            started_at DATETIME NOT NULL,
            ended_at DATETIME NOT NULL,
            duration_seconds INTEGER NOT NULL,
            loops INTEGER NOT NULL,
            completed INTEGER NOT NULL
        )
    `)
	if err != nil {
		return fmt.Errorf("create runs table: %w", err)
	}
	return nil
}
