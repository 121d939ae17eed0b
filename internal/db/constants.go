package db

// Timestamps are stored as fixed-width UTC text so that lexical order is
// chronological order and SQLite date functions still accept them.
const timeLayout = "2006-01-02 15:04:05.000000000"

// schemaVersion is the value written to PRAGMA user_version.
const schemaVersion = 1
