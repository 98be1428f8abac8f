package runner

import (
	"bytes"
	"sync"

	"go.uber.org/zap"
)

// Stream names one of the process output streams.
type Stream string

const (
	// StreamStdout is the standard output stream.
	StreamStdout Stream = "stdout"
	// StreamStderr is the standard error stream.
	StreamStderr Stream = "stderr"

	streamFieldName = "stream"
	lineTerminator  = '\n'
	carriageReturn  = "\r"
)

// Sink receives process output chunks as they are produced.
// Chunks of one stream arrive in order; the two streams may interleave arbitrarily.
type Sink interface {
	Append(stream Stream, chunk []byte)
}

// Flusher is implemented by sinks that buffer partial output.
type Flusher interface {
	Flush()
}

type sinkWriter struct {
	sink   Sink
	stream Stream
}

func (writer sinkWriter) Write(chunk []byte) (int, error) {
	if writer.sink != nil && len(chunk) > 0 {
		writer.sink.Append(writer.stream, bytes.Clone(chunk))
	}
	return len(chunk), nil
}

// BufferSink keeps every chunk in memory.
type BufferSink struct {
	mutex    sync.Mutex
	streams  map[Stream]*bytes.Buffer
	combined bytes.Buffer
}

// NewBufferSink constructs an empty BufferSink.
func NewBufferSink() *BufferSink {
	return &BufferSink{streams: map[Stream]*bytes.Buffer{}}
}

// Append records chunk for stream.
func (sink *BufferSink) Append(stream Stream, chunk []byte) {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()
	buffer, exists := sink.streams[stream]
	if !exists {
		buffer = &bytes.Buffer{}
		sink.streams[stream] = buffer
	}
	buffer.Write(chunk)
	sink.combined.Write(chunk)
}

// String returns everything captured for stream.
func (sink *BufferSink) String(stream Stream) string {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()
	if buffer, exists := sink.streams[stream]; exists {
		return buffer.String()
	}
	return ""
}

// Combined returns both streams in arrival order.
func (sink *BufferSink) Combined() string {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()
	return sink.combined.String()
}

// LoggerSink writes each complete output line as a log entry.
type LoggerSink struct {
	logger  *zap.Logger
	mutex   sync.Mutex
	pending map[Stream][]byte
}

// NewLoggerSink constructs a LoggerSink over logger.
func NewLoggerSink(logger *zap.Logger) *LoggerSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggerSink{logger: logger, pending: map[Stream][]byte{}}
}

// Append logs every line completed by chunk and keeps the remainder for the next call.
func (sink *LoggerSink) Append(stream Stream, chunk []byte) {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()
	buffered := append(sink.pending[stream], chunk...)
	for {
		lineEnd := bytes.IndexByte(buffered, lineTerminator)
		if lineEnd < 0 {
			break
		}
		sink.log(stream, buffered[:lineEnd])
		buffered = buffered[lineEnd+1:]
	}
	sink.pending[stream] = bytes.Clone(buffered)
}

// Flush logs any unterminated trailing output.
func (sink *LoggerSink) Flush() {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()
	for _, stream := range []Stream{StreamStdout, StreamStderr} {
		if remainder := sink.pending[stream]; len(remainder) > 0 {
			sink.log(stream, remainder)
		}
		delete(sink.pending, stream)
	}
}

func (sink *LoggerSink) log(stream Stream, line []byte) {
	text := string(bytes.TrimSuffix(line, []byte(carriageReturn)))
	sink.logger.Info(text, zap.String(streamFieldName, string(stream)))
}

var (
	_ Sink    = (*BufferSink)(nil)
	_ Sink    = (*LoggerSink)(nil)
	_ Flusher = (*LoggerSink)(nil)
)
