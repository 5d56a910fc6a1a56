package sqlite

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Driver names: "sqlite" is the pure Go driver, "sqlite3" the cgo one.
const (
	DriverPure = "sqlite"
	DriverCgo  = "sqlite3"
)

func InitDB(driver, dsn string) (*sql.DB, error) {
	if driver == "" {
		driver = DriverPure
	}
	if driver != DriverPure && driver != DriverCgo {
		return nil, fmt.Errorf("unsupported sqlite driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer; one connection also keeps :memory: databases shared.
	db.SetMaxOpenConns(1)
	if err := InitSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// InitSchema creates the task and event tables.
func InitSchema(db *sql.DB) error {
	createTasksTable := `CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		task TEXT NOT NULL CHECK (length(task) <= 50),
		time_of_day TEXT NOT NULL
	);`

	createEventsTable := `CREATE TABLE IF NOT EXISTS task_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id INTEGER NOT NULL,
		kind TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at TEXT NOT NULL
	);`

	if _, err := db.Exec(createTasksTable); err != nil {
		return err
	}
	if _, err := db.Exec(createEventsTable); err != nil {
		return err
	}
	return nil
}
