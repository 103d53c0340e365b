// Package database manages the GORM database connection.
//
// It supports MySQL for production deployments and SQLite for tests and
// local one-shot reconciliation runs. Connection pooling and I/O timeouts
// are applied to the MySQL connection so a slow ledger database cannot
// wedge run workers indefinitely.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    // the ledger store is unreachable; runs will fail transiently
//	}
package database
