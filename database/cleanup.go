package database

import (
	"log"
	"time"
)

// incidentRetentionDays is how long enforcement records are kept. The window
// store is the detection memory; this table is only an audit trail.
const incidentRetentionDays = 31

// CleanupOldIncidents deletes incident rows older than the retention period.
// Called daily by the scheduler.
func (s *Store) CleanupOldIncidents() {
	log.Println("Starting cleanup of old incidents...")

	cutoff := time.Now().AddDate(0, 0, -incidentRetentionDays).Unix()

	res, err := s.db.Exec("DELETE FROM incidents WHERE timestamp < ?", cutoff)
	if err != nil {
		log.Printf("Error deleting old incidents: %v", err)
		return
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		log.Printf("Error getting rows affected: %v", err)
		return
	}

	log.Printf("Successfully cleaned up %d old incidents", rowsAffected)
}
