package composer

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CommandStatus is the lifecycle status of one user instruction.
type CommandStatus string

const (
	CommandPending CommandStatus = "pending"
	CommandSuccess CommandStatus = "success"
	CommandError   CommandStatus = "error"
)

// CommandRecord is one user-issued instruction in the conversation log.
// Status transitions Pending -> Success | Error exactly once.
type CommandRecord struct {
	Id             uuid.UUID
	Text           string
	SelectionLabel string
	Status         CommandStatus
	Message        string // error annotation when Status is CommandError
	CreatedAt      time.Time
}

// CommandLog is the append-only log of issued instructions. Clearing it also
// fires the backend conversation reset as a side channel.
type CommandLog struct {
	mu      sync.Mutex
	records []*CommandRecord
	client  *Client
	logger  *log.Logger
}

func NewCommandLog(client *Client, logger *log.Logger) *CommandLog {
	return &CommandLog{client: client, logger: logger}
}

// Append records a new pending instruction.
func (l *CommandLog) Append(text, selectionLabel string) *CommandRecord {
	rec := &CommandRecord{
		Id:             uuid.New(),
		Text:           text,
		SelectionLabel: selectionLabel,
		Status:         CommandPending,
		CreatedAt:      time.Now(),
	}
	l.mu.Lock()
	l.records = append(l.records, rec)
	l.mu.Unlock()
	return rec
}

// MarkSuccess sets the terminal success status. Ignored if the record already
// reached a terminal status.
func (l *CommandLog) MarkSuccess(rec *CommandRecord) {
	l.mu.Lock()
	if rec.Status == CommandPending {
		rec.Status = CommandSuccess
	}
	l.mu.Unlock()
}

// MarkError sets the terminal error status with a user-visible annotation.
// Ignored if the record already reached a terminal status.
func (l *CommandLog) MarkError(rec *CommandRecord, message string) {
	l.mu.Lock()
	if rec.Status == CommandPending {
		rec.Status = CommandError
		rec.Message = message
	}
	l.mu.Unlock()
}

// Records returns a snapshot copy of the log.
func (l *CommandLog) Records() []CommandRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]CommandRecord, len(l.records))
	for i, rec := range l.records {
		out[i] = *rec
	}
	return out
}

// Clear empties the local log and asks the backend to forget the
// conversation. The remote reset is fire-and-forget: its failure is logged
// and does not block the local clear.
func (l *CommandLog) Clear(ctx context.Context) {
	l.mu.Lock()
	l.records = nil
	client := l.client
	l.mu.Unlock()

	if client == nil {
		return
	}
	go func() {
		if err := client.Reset(ctx); err != nil && l.logger != nil {
			l.logger.Printf("conversation reset failed: %v", err)
		}
	}()
}
