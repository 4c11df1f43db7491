package store

// schemaStatements creates the three entity tables. The UNIQUE constraints
// on names and titles back the application-level duplicate checks; without
// them two concurrent requests could both pass the check and insert.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	)`,

	`CREATE TABLE IF NOT EXISTS countries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		code TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS dances (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		category_id INTEGER REFERENCES categories(id),
		country_id INTEGER REFERENCES countries(id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_dances_category_id ON dances(category_id)`,
	`CREATE INDEX IF NOT EXISTS idx_dances_country_id ON dances(country_id)`,
}
