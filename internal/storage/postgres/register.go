package postgres

import "github.com/CodedGrimoire/text2sql-analytics/internal/storage"

func init() {
	// registers the backend factory
	storage.Register("postgres", New)
}
