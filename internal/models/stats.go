package models

import "time"

// IngestStats summarises what the log loader has seen since startup.
type IngestStats struct {
	FilesTracked   int
	RecordsParsed  int
	RecordsStored  int
	LinesSkipped   int
	LinesMalformed int
	LastScan       time.Time

	// RecordsInDatabase is filled by the manager, not the loader.
	RecordsInDatabase int
}
