package writer

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// ErrWriterClosed is returned when attempting to write to a closed writer.
var ErrWriterClosed = errors.New("writer is closed")

// ErrBufferFull is returned when the queue is full and BlockOnFull is off.
var ErrBufferFull = errors.New("buffer is full")

// Stats holds statistics about async writer performance.
type Stats struct {
	// BytesWritten is the total number of bytes handed to the underlying writer.
	BytesWritten int64

	// WriteCount is the total number of accepted Write calls.
	WriteCount int64

	// FlushCount is the total number of flushes to the underlying writer.
	FlushCount int64

	// ErrorCount is the total number of failed flushes.
	ErrorCount int64

	// Dropped is the number of writes rejected because the queue was full.
	Dropped int64
}

// Config holds configuration options for AsyncWriter.
type Config struct {
	// BufferSize is the number of bytes accumulated before a flush.
	// Default: 64KB
	BufferSize int

	// QueueSize is the number of pending writes the background goroutine
	// can lag behind by. Default: 1024
	QueueSize int

	// FlushInterval is how often to flush the buffer automatically.
	// Set to 0 to disable automatic flushing.
	// Default: 1 second
	FlushInterval time.Duration

	// BlockOnFull makes Write wait for queue space instead of dropping.
	// The control loop logs through this writer, so the default is false.
	BlockOnFull bool

	// MaxRetries is the number of times to retry failed write operations.
	// Default: 3
	MaxRetries int

	// RetryDelay is the delay between retries.
	// Default: 100ms
	RetryDelay time.Duration

	// OnError is called when write errors occur.
	OnError func(error)
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		BufferSize:    64 * 1024,
		QueueSize:     1024,
		FlushInterval: time.Second,
		MaxRetries:    3,
		RetryDelay:    100 * time.Millisecond,
	}
}

// AsyncWriter is an io.WriteCloser that hands writes to a background
// goroutine, so callers on a fixed-rate loop never wait on disk.
type AsyncWriter struct {
	underlying io.Writer
	config     Config

	// buffer is only touched by the background goroutine.
	buffer []byte

	// mu guards closing writeCh against concurrent sends.
	mu      sync.RWMutex
	closed  bool
	writeCh chan []byte
	flushCh chan chan error
	stopCh  chan struct{}
	done    chan struct{}
	err     error

	bytesWritten atomic.Int64
	writeCount   atomic.Int64
	flushCount   atomic.Int64
	errorCount   atomic.Int64
	dropped      atomic.Int64
}

// New creates a new AsyncWriter with default configuration.
func New(w io.Writer) *AsyncWriter {
	return NewWithConfig(w, DefaultConfig())
}

// NewWithConfig creates a new AsyncWriter with the specified configuration.
func NewWithConfig(w io.Writer, config Config) *AsyncWriter {
	defaults := DefaultConfig()
	if config.BufferSize <= 0 {
		config.BufferSize = defaults.BufferSize
	}
	if config.QueueSize <= 0 {
		config.QueueSize = defaults.QueueSize
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = defaults.MaxRetries
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = defaults.RetryDelay
	}

	aw := &AsyncWriter{
		underlying: w,
		config:     config,
		buffer:     make([]byte, 0, config.BufferSize),
		writeCh:    make(chan []byte, config.QueueSize),
		flushCh:    make(chan chan error),
		stopCh:     make(chan struct{}),
		done:       make(chan struct{}),
	}

	go aw.writerLoop()
	return aw
}

// Write queues a copy of data. It implements io.Writer and always reports
// the full length on success, since the bytes are written later.
func (aw *AsyncWriter) Write(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, nil
	}

	aw.mu.RLock()
	defer aw.mu.RUnlock()
	if aw.closed {
		return 0, ErrWriterClosed
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	if aw.config.BlockOnFull {
		aw.writeCh <- buf
	} else {
		select {
		case aw.writeCh <- buf:
		default:
			aw.dropped.Add(1)
			return 0, ErrBufferFull
		}
	}
	aw.writeCount.Add(1)
	return len(data), nil
}

// Flush blocks until every write queued before the call has reached the
// underlying writer.
func (aw *AsyncWriter) Flush(ctx context.Context) error {
	done := make(chan error, 1)

	select {
	case aw.flushCh <- done:
	case <-aw.done:
		return ErrWriterClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting writes, flushes what is queued and closes the
// underlying writer if it is an io.Closer.
func (aw *AsyncWriter) Close() error {
	aw.mu.Lock()
	if aw.closed {
		aw.mu.Unlock()
		<-aw.done
		return nil
	}
	aw.closed = true
	close(aw.writeCh)
	aw.mu.Unlock()

	<-aw.done

	if c, ok := aw.underlying.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return err
		}
	}
	return aw.err
}

// Stats returns a snapshot of the writer's counters.
func (aw *AsyncWriter) Stats() Stats {
	return Stats{
		BytesWritten: aw.bytesWritten.Load(),
		WriteCount:   aw.writeCount.Load(),
		FlushCount:   aw.flushCount.Load(),
		ErrorCount:   aw.errorCount.Load(),
		Dropped:      aw.dropped.Load(),
	}
}

// writerLoop owns the buffer. It exits once writeCh is closed and drained.
func (aw *AsyncWriter) writerLoop() {
	defer close(aw.done)

	var tick <-chan time.Time
	if aw.config.FlushInterval > 0 {
		ticker := time.NewTicker(aw.config.FlushInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case data, ok := <-aw.writeCh:
			if !ok {
				aw.err = aw.flushBuffer()
				return
			}
			aw.buffer = append(aw.buffer, data...)
			if len(aw.buffer) >= aw.config.BufferSize {
				_ = aw.flushBuffer()
			}

		case done := <-aw.flushCh:
			// Take whatever was queued before the flush request.
			aw.drainQueued()
			done <- aw.flushBuffer()

		case <-tick:
			_ = aw.flushBuffer()
		}
	}
}

func (aw *AsyncWriter) drainQueued() {
	for {
		select {
		case data, ok := <-aw.writeCh:
			if !ok {
				return
			}
			aw.buffer = append(aw.buffer, data...)
		default:
			return
		}
	}
}

// flushBuffer writes all buffered data to the underlying writer.
func (aw *AsyncWriter) flushBuffer() error {
	if len(aw.buffer) == 0 {
		return nil
	}

	written, err := aw.writeWithRetries(aw.buffer)
	aw.buffer = aw.buffer[:0]

	aw.flushCount.Add(1)
	aw.bytesWritten.Add(int64(written))
	if err != nil {
		aw.errorCount.Add(1)
		if aw.config.OnError != nil {
			aw.config.OnError(err)
		}
	}
	return err
}

// writeWithRetries writes data with retry logic.
func (aw *AsyncWriter) writeWithRetries(data []byte) (int, error) {
	var totalWritten int
	var lastErr error

	for attempt := 0; attempt <= aw.config.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(aw.config.RetryDelay)
		}

		written, err := aw.underlying.Write(data[totalWritten:])
		totalWritten += written

		if err != nil {
			lastErr = err
			continue
		}

		if totalWritten >= len(data) {
			return totalWritten, nil
		}
	}

	return totalWritten, lastErr
}
