package repository

import (
	"context"
	"database/sql"
)

// schema holds the catalog tables.  Unit labels are unique per show;
// booking_id on a unit mirrors the ledger's held state and stays NULL
// while the unit is free.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS shows (
		id         VARCHAR(64)  NOT NULL,
		type       VARCHAR(16)  NOT NULL,
		title      VARCHAR(255) NOT NULL,
		start_time DATETIME     NOT NULL,
		created_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id)
	)`,
	`CREATE TABLE IF NOT EXISTS units (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		show_id    VARCHAR(64) NOT NULL,
		label      VARCHAR(32) NOT NULL,
		booking_id VARCHAR(64) NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_units_show_label (show_id, label),
		KEY idx_units_show (show_id)
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id         VARCHAR(64)  NOT NULL,
		show_id    VARCHAR(64)  NOT NULL,
		type       VARCHAR(16)  NOT NULL,
		units      TEXT         NOT NULL,
		user_name  VARCHAR(255) NOT NULL,
		user_email VARCHAR(255) NOT NULL,
		status     VARCHAR(16)  NOT NULL,
		created_at DATETIME     NOT NULL,
		PRIMARY KEY (id),
		KEY idx_bookings_show (show_id),
		KEY idx_bookings_created (created_at)
	)`,
}

// EnsureSchema creates the catalog tables if they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
