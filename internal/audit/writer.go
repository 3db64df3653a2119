package audit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

const (
	// GenesisHash is the initial hash for the first event in the chain.
	GenesisHash = "sha256:genesis"

	// HashPrefix is prepended to all hash values.
	HashPrefix = "sha256:"
)

// Writer is an audit log sink. Implementations must make a failed write
// visible to the caller: if the audit log cannot be written, the audited
// operation must fail.
type Writer interface {
	Write(event *Event) error
	Close() error
}

// NopWriter discards all events. Used when audit logging is disabled.
type NopWriter struct{}

var _ Writer = (*NopWriter)(nil)

func (NopWriter) Write(*Event) error { return nil }
func (NopWriter) Close() error       { return nil }

// FileWriter appends JSONL events to a file, chaining them with SHA-256
// hashes. Reopening an existing log continues its chain.
type FileWriter struct {
	mu       sync.Mutex
	file     *os.File
	lastHash string
}

var _ Writer = (*FileWriter)(nil)

// NewFileWriter opens (or creates) an audit log at path.
func NewFileWriter(path string) (*FileWriter, error) {
	lastHash := GenesisHash
	if data, err := os.ReadFile(path); err == nil && len(data) > 0 {
		hash, err := readLastHash(data)
		if err != nil {
			return nil, fmt.Errorf("failed to read last hash from existing log: %w", err)
		}
		lastHash = hash
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}

	return &FileWriter{file: file, lastHash: lastHash}, nil
}

// Write validates the event, links it into the hash chain and appends it,
// syncing to disk before returning.
func (w *FileWriter) Write(event *Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := event.Validate(); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}

	event.HashPrev = w.lastHash

	canonical, err := event.canonicalJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}
	event.Hash = calculateHash(canonical, w.lastHash)

	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}

	if _, err := w.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync audit log: %w", err)
	}

	w.lastHash = event.Hash
	return nil
}

// Close flushes and closes the log file.
func (w *FileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	if err := w.file.Sync(); err != nil {
		return err
	}
	return w.file.Close()
}

// readLastHash returns the hash of the last event in a JSONL log.
func readLastHash(data []byte) (string, error) {
	var lastLine []byte
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) > 0 {
			lastLine = append(lastLine[:0], line...)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	if len(lastLine) == 0 {
		return GenesisHash, nil
	}

	var event struct {
		Hash string `json:"hash"`
	}
	if err := json.Unmarshal(lastLine, &event); err != nil {
		return "", fmt.Errorf("failed to parse last event: %w", err)
	}
	if event.Hash == "" {
		return "", fmt.Errorf("last event has no hash")
	}
	return event.Hash, nil
}

// VerifyChain checks the hash chain of an audit log file and returns the
// number of verified events.
func VerifyChain(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read audit log: %w", err)
	}

	prev := GenesisHash
	count := 0
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			return count, fmt.Errorf("event %d: failed to parse: %w", count+1, err)
		}
		if event.HashPrev != prev {
			return count, fmt.Errorf("event %d: hash chain broken", count+1)
		}

		canonical, err := event.canonicalJSON()
		if err != nil {
			return count, fmt.Errorf("event %d: %w", count+1, err)
		}
		if calculateHash(canonical, prev) != event.Hash {
			return count, fmt.Errorf("event %d: hash mismatch", count+1)
		}

		prev = event.Hash
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, err
	}

	return count, nil
}

// Global writer, wired up by the CLI.
var (
	globalMu     sync.RWMutex
	globalWriter Writer = NopWriter{}
)

// InitFile directs audit logging to a file writer; an empty path disables
// audit logging.
func InitFile(path string) error {
	if path == "" {
		return Init(nil)
	}

	w, err := NewFileWriter(path)
	if err != nil {
		return err
	}
	return Init(w)
}

// Init installs w as the global audit writer. A nil w disables logging.
func Init(w Writer) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if w == nil {
		globalWriter = NopWriter{}
		return nil
	}
	globalWriter = w
	return nil
}

// Log writes an event to the global writer. When audit logging is enabled
// a returned error should fail the audited operation.
func Log(event *Event) error {
	globalMu.RLock()
	w := globalWriter
	globalMu.RUnlock()

	return w.Write(event)
}

// Close closes the global writer and disables logging.
func Close() error {
	globalMu.Lock()
	defer globalMu.Unlock()

	err := globalWriter.Close()
	globalWriter = NopWriter{}
	return err
}
