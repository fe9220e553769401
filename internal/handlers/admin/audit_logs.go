package admin

import (
	"database/sql"
	"log"
	"net/http"
	"strconv"

	"github.com/shiftsync/shiftsync_backend/internal/models"
	"github.com/shiftsync/shiftsync_backend/internal/pkg/response"
)

// ListAuditLogsHandler returns the newest audit entries, optional ?limit=
// up to 500.
func ListAuditLogsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 100
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 500 {
				limit = v
			}
		}

		rows, err := db.Query(`
			SELECT id, action, username, target_shift_id, created_at
			FROM audit_logs
			ORDER BY created_at DESC
			LIMIT $1`, limit)
		if err != nil {
			log.Printf("DB query error: %v", err)
			response.RespondWithError(w, http.StatusInternalServerError, "Database error")
			return
		}
		defer rows.Close()

		logs := []models.AuditLogEntry{}
		for rows.Next() {
			var entry models.AuditLogEntry
			if err := rows.Scan(&entry.ID, &entry.Action, &entry.User, &entry.TargetShiftID, &entry.Timestamp); err != nil {
				log.Printf("Error scanning row: %v", err)
				continue
			}
			logs = append(logs, entry)
		}
		response.RespondWithJSON(w, http.StatusOK, logs)
	}
}
