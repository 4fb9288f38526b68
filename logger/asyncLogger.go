package logger

import (
	"sync"

	log_model "pharma-supply/models/log"
	"pharma-supply/types"

	"gorm.io/gorm"
)

// AsyncLogger persists request log entries off the request path.
type AsyncLogger struct {
	db      *gorm.DB
	channel chan types.LogEntry
	done    chan struct{}
	once    sync.Once
	// mu guards closed so no send races the channel close.
	mu     sync.RWMutex
	closed bool
}

func NewAsyncLogger(db *gorm.DB) *AsyncLogger {
	return &AsyncLogger{
		db:      db,
		channel: make(chan types.LogEntry, 100),
		done:    make(chan struct{}),
	}
}

// ProcessLog drains the channel until Close is called. Run it in its own goroutine.
func (l *AsyncLogger) ProcessLog() {
	defer close(l.done)
	Info("Starting asynchronous request logger")

	for entry := range l.channel {
		row := log_model.Log{
			Method:          entry.Method,
			URL:             entry.URL,
			ClientIP:        entry.ClientIP,
			RequestBody:     entry.RequestBody,
			ResponseBody:    entry.ResponseBody,
			RequestHeaders:  entry.RequestHeaders,
			ResponseHeaders: entry.ResponseHeaders,
			StatusCode:      entry.StatusCode,
			LatencyMS:       entry.LatencyMS,
			CreatedAt:       entry.CreatedAt,
		}
		if entry.UserID != "" {
			userID := entry.UserID
			row.UserID = &userID
		}
		if err := l.db.Create(&row).Error; err != nil {
			Error("Failed to insert request log "+entry.Method+" "+entry.URL, err)
		}
	}
}

// Log queues an entry. When the buffer is full the entry is dropped rather
// than blocking the request.
func (l *AsyncLogger) Log(entry types.LogEntry) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		Warning("Request logger closed, dropping " + entry.Method + " " + entry.URL)
		return
	}
	select {
	case l.channel <- entry:
	default:
		Warning("Request log buffer full, dropping " + entry.Method + " " + entry.URL)
	}
}

// Close stops accepting entries and waits for the queue to drain.
func (l *AsyncLogger) Close() {
	l.once.Do(func() {
		l.mu.Lock()
		l.closed = true
		close(l.channel)
		l.mu.Unlock()
		<-l.done
	})
}
