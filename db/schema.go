// ABOUTME: Database schema definitions and migrations
// ABOUTME: Handles SQLite table creation and initialization
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS prospects (
	id TEXT PRIMARY KEY,
	first_name TEXT,
	last_name TEXT,
	email TEXT,
	job_title TEXT,
	company TEXT NOT NULL,
	registration_id TEXT,
	sector_code TEXT,
	sector_label TEXT,
	website TEXT,
	profile_url TEXT,
	company_page_url TEXT,
	email_validity TEXT NOT NULL DEFAULT 'unknown',
	emailing_status TEXT NOT NULL DEFAULT 'none',
	enrichment TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_prospects_company ON prospects(company);
CREATE INDEX IF NOT EXISTS idx_prospects_email ON prospects(email);
CREATE INDEX IF NOT EXISTS idx_prospects_registration_id ON prospects(registration_id);

CREATE TABLE IF NOT EXISTS scheduled_emails (
	id TEXT PRIMARY KEY,
	prospect_id TEXT NOT NULL,
	sequence_id TEXT,
	sequence_name TEXT,
	step_number INTEGER NOT NULL,
	subject TEXT NOT NULL,
	body TEXT NOT NULL,
	scheduled_for DATETIME NOT NULL,
	status TEXT NOT NULL DEFAULT 'scheduled',
	cancelled_reason TEXT,
	attempts INTEGER NOT NULL DEFAULT 0,
	sent_at DATETIME,
	opened INTEGER NOT NULL DEFAULT 0,
	clicked INTEGER NOT NULL DEFAULT 0,
	replied INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (prospect_id) REFERENCES prospects(id)
);

CREATE INDEX IF NOT EXISTS idx_scheduled_emails_prospect_id ON scheduled_emails(prospect_id);
CREATE INDEX IF NOT EXISTS idx_scheduled_emails_status ON scheduled_emails(status);
CREATE INDEX IF NOT EXISTS idx_scheduled_emails_due ON scheduled_emails(status, scheduled_for);
CREATE INDEX IF NOT EXISTS idx_scheduled_emails_sequence_id ON scheduled_emails(sequence_id);
`

// InitSchema creates all tables and indexes if they don't exist
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
