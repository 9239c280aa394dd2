// Package db provides the embedded database schema.
package db

import _ "embed"

// Schema contains the DDL statements for the products, receipts and
// receipt_items tables. It is idempotent.
//
//go:embed migrations/001_schema.sql
var Schema string
