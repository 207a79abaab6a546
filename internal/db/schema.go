package db

// Registry of imported sources. Each source's rows live in their own table,
// named by table_name, whose columns mirror the imported file.
const createSourcesTable = `
CREATE TABLE IF NOT EXISTS sources (
    name TEXT PRIMARY KEY,
    table_name TEXT NOT NULL UNIQUE,
    row_count INTEGER NOT NULL DEFAULT 0,
    imported_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

const upsertSource = `
INSERT INTO sources (name, table_name, row_count, imported_at)
VALUES (?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(name) DO UPDATE SET
    table_name = excluded.table_name,
    row_count = excluded.row_count,
    imported_at = CURRENT_TIMESTAMP
`

const selectSourceNames = `
SELECT name FROM sources ORDER BY name
`

const selectSourceTable = `
SELECT table_name FROM sources WHERE name = ?
`

const deleteSource = `
DELETE FROM sources WHERE name = ?
`

// Filter columns recognised by Query. A clause is only added when the
// source table has the column.
const (
	yearColumn    = "annee"
	countryColumn = "pays"
)

// Columns searched by the free-text query, when present.
var searchColumns = []string{"title", "abstract", "nom_politique", "nom_centrale"}
