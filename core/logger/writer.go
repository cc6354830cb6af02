package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

// asyncWriter decouples log production from sink I/O. Records are queued and
// a single goroutine fans them out to every sink in order.
type asyncWriter struct {
	records chan []byte
	control chan chan error
	stopped chan struct{}
	closing sync.Once

	errMu    sync.Mutex
	firstErr error

	sinks []*bufio.Writer
}

func newAsyncWriter(writers []io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	w := &asyncWriter{
		records: make(chan []byte, 256),
		control: make(chan chan error),
		stopped: make(chan struct{}),
	}
	for _, out := range writers {
		if out == nil {
			continue
		}
		w.sinks = append(w.sinks, bufio.NewWriterSize(out, bufSize))
	}
	go w.run()
	return w
}

func (w *asyncWriter) run() {
	for {
		select {
		case rec, open := <-w.records:
			if !open {
				w.flushSinks()
				close(w.stopped)
				return
			}
			if len(rec) > 0 {
				w.recordErr(w.writeSinks(rec))
			}
		case ack := <-w.control:
			ack <- w.flushSinks()
		}
	}
}

// Write queues the record. When the queue is saturated the call blocks
// rather than dropping the record.
func (w *asyncWriter) Write(p []byte) error {
	if err := w.err(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	rec := make([]byte, len(p))
	copy(rec, p)
	w.records <- rec
	return nil
}

// Flush blocks until everything queued so far has reached the sinks.
func (w *asyncWriter) Flush() error {
	if err := w.err(); err != nil {
		return err
	}
	ack := make(chan error, 1)
	w.control <- ack
	return <-ack
}

// Close drains the queue, flushes the sinks and reports the first write error.
func (w *asyncWriter) Close() error {
	w.closing.Do(func() {
		close(w.records)
	})
	<-w.stopped
	return w.err()
}

func (w *asyncWriter) writeSinks(p []byte) error {
	for _, sink := range w.sinks {
		if _, err := sink.Write(p); err != nil {
			return err
		}
		if err := sink.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func (w *asyncWriter) flushSinks() error {
	var errs []error
	for _, sink := range w.sinks {
		if err := sink.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (w *asyncWriter) err() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.firstErr
}

func (w *asyncWriter) recordErr(err error) {
	if err == nil {
		return
	}
	w.errMu.Lock()
	defer w.errMu.Unlock()
	if w.firstErr == nil {
		w.firstErr = err
	}
}
