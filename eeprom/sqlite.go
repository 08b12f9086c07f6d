package eeprom

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLite is a Chip persisted in a sqlite database, one row per written
// byte. Bytes without a row read as Erased.
type SQLite struct {
	conn *sql.DB
	size int
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(path string, size int) (*SQLite, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &SQLite{conn: conn, size: size}
	if err := s.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLite) initSchema() error {
	_, err := s.conn.Exec(`
	CREATE TABLE IF NOT EXISTS cells (
		addr INTEGER PRIMARY KEY,
		value INTEGER NOT NULL
	);`)
	return err
}

func (s *SQLite) Close() error {
	return s.conn.Close()
}

func (s *SQLite) WriteAt(addr int, data []byte) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.Prepare("INSERT OR REPLACE INTO cells (addr, value) VALUES (?, ?)")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare write: %w", err)
	}
	defer stmt.Close()

	for i, b := range data {
		if _, err := stmt.Exec(addr+i, int(b)); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to write cell 0x%04X: %w", addr+i, err)
		}
	}
	return tx.Commit()
}

func (s *SQLite) ReadAt(addr int, n int) ([]byte, error) {
	b := make([]byte, n)
	for i := range b {
		b[i] = Erased
	}

	rows, err := s.conn.Query("SELECT addr, value FROM cells WHERE addr >= ? AND addr < ?", addr, addr+n)
	if err != nil {
		return nil, fmt.Errorf("failed to query cells: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a, v int
		if err := rows.Scan(&a, &v); err != nil {
			return nil, fmt.Errorf("failed to scan cell: %w", err)
		}
		b[a-addr] = byte(v)
	}
	return b, rows.Err()
}

// Ack always succeeds, writes are committed synchronously.
func (s *SQLite) Ack() bool {
	return true
}

func (s *SQLite) Size() int {
	return s.size
}
