package audit

import (
	"database/sql"
	"log"
	"time"
)

type entry struct {
	action    string
	user      string
	shiftID   string
	timestamp time.Time
}

// Logger records workflow actions into the audit_logs table without ever
// blocking the request that triggered them. Record enqueues onto a
// buffered channel; if the buffer is full the entry is dropped and
// logged, never retried, and no error reaches the caller.
type Logger struct {
	db      *sql.DB
	entries chan entry
}

func NewLogger(db *sql.DB) *Logger {
	l := &Logger{
		db:      db,
		entries: make(chan entry, 256),
	}
	go l.run()
	return l
}

// Record enqueues one audit entry, fire-and-forget.
func (l *Logger) Record(action, user, shiftID string) {
	e := entry{action: action, user: user, shiftID: shiftID, timestamp: time.Now().UTC()}
	select {
	case l.entries <- e:
	default:
		log.Printf("Audit buffer full, dropping entry: %s by %s", action, user)
	}
}

func (l *Logger) run() {
	for e := range l.entries {
		_, err := l.db.Exec(`
			INSERT INTO audit_logs (action, username, target_shift_id, created_at)
			VALUES ($1, $2, $3, $4)`,
			e.action, e.user, e.shiftID, e.timestamp,
		)
		if err != nil {
			log.Printf("Failed to write audit entry: %v", err)
		}
	}
}
