/*
Package writer provides an asynchronous, buffered io.WriteCloser.

The control loop logs from a goroutine that must never wait on disk. Wrapping
the log file in an AsyncWriter moves every write onto a background goroutine:

	file := &lumberjack.Logger{Filename: "robot.log"}
	w := writer.New(file)
	defer w.Close()

	logger := slog.New(slog.NewJSONHandler(w, nil))

Write copies the data and queues it. When the queue is full Write returns
ErrBufferFull and counts a drop, unless Config.BlockOnFull is set. The
background goroutine batches queued data into a buffer and flushes it when it
reaches Config.BufferSize, every Config.FlushInterval, on Flush, and on Close.
Failed flushes are retried Config.MaxRetries times and reported to
Config.OnError.

Close drains the queue, flushes, and closes the underlying writer if it
implements io.Closer.
*/
package writer
