package nats

import (
	"bytes"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
)

// LogWriter implements io.Writer and publishes build output line by line
type LogWriter struct {
	client   *Client
	app      string
	output   string // "stdout" or "stderr"
	phase    string
	buffer   []byte
	sequence int
	mu       sync.Mutex
	logger   hclog.Logger
}

// NewLogWriter creates a NATS-based log writer for one output stream
func NewLogWriter(client *Client, app, output string, logger hclog.Logger) *LogWriter {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &LogWriter{
		client: client,
		app:    app,
		output: output,
		phase:  "install",
		logger: logger,
	}
}

// Write buffers partial lines and publishes complete ones. Publish failures
// are logged and never fail the write.
func (w *LogWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buffer = append(w.buffer, p...)

	for {
		idx := bytes.IndexByte(w.buffer, '\n')
		if idx == -1 {
			break
		}
		line := string(w.buffer[:idx+1])
		w.buffer = w.buffer[idx+1:]
		w.send(line)
	}

	return len(p), nil
}

// SetPhase updates the phase attached to subsequent lines
func (w *LogWriter) SetPhase(phase string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.phase = phase
}

// Flush sends any buffered partial line
func (w *LogWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.buffer) > 0 {
		w.send(string(w.buffer))
		w.buffer = w.buffer[:0]
	}
	return nil
}

// Close flushes and publishes the end-of-log marker
func (w *LogWriter) Close(status string) error {
	if err := w.Flush(); err != nil {
		return err
	}
	if w.client == nil {
		return nil
	}
	return w.client.PublishBuildLogEnd(BuildLogEndPayload{App: w.app, Status: status})
}

func (w *LogWriter) send(content string) {
	w.sequence++
	if w.client == nil {
		return
	}
	payload := BuildLogPayload{
		App:       w.app,
		LogOutput: w.output,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
		Sequence:  w.sequence,
		Phase:     w.phase,
	}
	if err := w.client.PublishBuildLog(payload); err != nil {
		w.logger.Warn("failed to publish build log", "error", err, "app", w.app)
	}
}
