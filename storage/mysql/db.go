package mysql

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

const Driver = "mysql"

// InitDB opens a MySQL pool, checks it and creates the tables.
func InitDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open(Driver, dsn)
	if err != nil {
		return nil, err
	}
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := InitSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func InitSchema(ctx context.Context, db *sql.DB) error {
	createTasks := `CREATE TABLE IF NOT EXISTS tasks (
    id BIGINT PRIMARY KEY AUTO_INCREMENT,
    task VARCHAR(50) NOT NULL,
    time_of_day CHAR(8) NOT NULL
)`
	if _, err := db.ExecContext(ctx, createTasks); err != nil {
		return err
	}
	createEvents := `CREATE TABLE IF NOT EXISTS task_events (
    id BIGINT PRIMARY KEY AUTO_INCREMENT,
    task_id BIGINT NOT NULL,
    kind VARCHAR(20) NOT NULL,
    message VARCHAR(255) NOT NULL,
    created_at VARCHAR(40) NOT NULL
)`
	_, err := db.ExecContext(ctx, createEvents)
	return err
}
