package stats

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"
)

// Counter keys. All but Messages are maintained by client.Writer.
const (
	BytesBuffered  = "bytes_buffered"
	BytesSent      = "bytes_sent"
	Flushes        = "flushes"
	EmptyFlushes   = "empty_flushes"
	ConnectionLost = "connection_lost"
	SendErrors     = "send_errors"

	// Messages counts records sent by the command line client.
	Messages = "messages"
)

var allStatKeys = []string{
	BytesBuffered,
	BytesSent,
	ConnectionLost,
	EmptyFlushes,
	Flushes,
	Messages,
	SendErrors,
}

// Stats is a set of named counters. It is safe for concurrent use, so one
// instance can be shared by several writers and read by a collector.
type Stats struct {
	startedAt time.Time

	counts  map[string]int64
	countMu sync.Mutex
}

// New returns a new instance of Stats
func New() *Stats {
	s := &Stats{
		startedAt: time.Now().UTC(),
		counts:    make(map[string]int64),
	}

	for _, k := range allStatKeys {
		s.counts[k] = 0
	}

	return s
}

func (s *Stats) Set(key string, val int64) {
	s.countMu.Lock()
	defer s.countMu.Unlock()

	s.counts[key] = val
}

func (s *Stats) Add(key string, val int64) {
	s.countMu.Lock()
	defer s.countMu.Unlock()

	s.counts[key] += val
}

func (s *Stats) Incr(key string) {
	s.Add(key, 1)
}

func (s *Stats) Get(key string) int64 {
	s.countMu.Lock()
	defer s.countMu.Unlock()

	return s.counts[key]
}

// Snapshot returns a copy of all counters.
func (s *Stats) Snapshot() map[string]int64 {
	s.countMu.Lock()
	defer s.countMu.Unlock()

	m := make(map[string]int64, len(s.counts))
	for k, v := range s.counts {
		m[k] = v
	}
	return m
}

// Uptime returns the time elapsed since the counters were created.
func (s *Stats) Uptime() time.Duration {
	return time.Since(s.startedAt)
}

// Bytes renders the counters as sorted "key: value" lines.
func (s *Stats) Bytes() []byte {
	s.countMu.Lock()
	defer s.countMu.Unlock()

	buf := bytes.NewBuffer([]byte{})
	var keys []string

	for k := range s.counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := s.counts[k]

		writeStringOrPanic(buf, k)
		writeStringOrPanic(buf, ": ")

		writeStringOrPanic(buf, strconv.FormatInt(v, 10))
		writeStringOrPanic(buf, "\n")
	}

	return buf.Bytes()
}

func (s *Stats) String() string {
	return string(s.Bytes())
}

func writeStringOrPanic(buf *bytes.Buffer, s string) {
	if _, err := buf.WriteString(s); err != nil {
		panic(err)
	}
}

func PrettyTime(ns float64) string {
	if ns > float64(time.Second*60) {
		return fmt.Sprintf("%.2fm", ns/float64(time.Second*60))
	}
	if ns > float64(time.Second) {
		return fmt.Sprintf("%.2fs", ns/float64(time.Second))
	}
	if ns > float64(time.Millisecond) {
		return fmt.Sprintf("%.2fms", ns/float64(time.Millisecond))
	}
	if ns > float64(time.Microsecond) {
		return fmt.Sprintf("%.2fμ", ns/float64(time.Microsecond))
	}
	return fmt.Sprintf("%.2fns", ns)
}
