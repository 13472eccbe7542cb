package gateway

import (
	"fmt"
	"net/http"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	"meetingmind/internal/domain"
)

// handleMetrics serves GET /metrics in Prometheus text format.
// This uses the lightweight text format to avoid pulling in the full prometheus client.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	fmt.Fprintf(w, "# HELP meetingmind_sessions_active Number of connected sessions.\n")
	fmt.Fprintf(w, "# TYPE meetingmind_sessions_active gauge\n")
	fmt.Fprintf(w, "meetingmind_sessions_active %d\n", s.metrics.SessionsActive.Load())

	fmt.Fprintf(w, "# HELP meetingmind_sessions_total Total sessions created.\n")
	fmt.Fprintf(w, "# TYPE meetingmind_sessions_total counter\n")
	fmt.Fprintf(w, "meetingmind_sessions_total %d\n", s.metrics.SessionsTotal.Load())

	fmt.Fprintf(w, "# HELP meetingmind_audio_chunks_total Total audio chunks received.\n")
	fmt.Fprintf(w, "# TYPE meetingmind_audio_chunks_total counter\n")
	fmt.Fprintf(w, "meetingmind_audio_chunks_total %d\n", s.metrics.AudioChunks.Load())

	fmt.Fprintf(w, "# HELP meetingmind_control_requests_total Total control messages handled.\n")
	fmt.Fprintf(w, "# TYPE meetingmind_control_requests_total counter\n")
	fmt.Fprintf(w, "meetingmind_control_requests_total %d\n", s.metrics.ControlRequests.Load())

	fmt.Fprintf(w, "# HELP meetingmind_insights_total Total insights broadcast.\n")
	fmt.Fprintf(w, "# TYPE meetingmind_insights_total counter\n")
	fmt.Fprintf(w, "meetingmind_insights_total %d\n", s.metrics.InsightsTotal.Load())

	fmt.Fprintf(w, "# HELP meetingmind_messages_sent_total Total messages queued to clients.\n")
	fmt.Fprintf(w, "# TYPE meetingmind_messages_sent_total counter\n")
	fmt.Fprintf(w, "meetingmind_messages_sent_total %d\n", s.metrics.MessagesSent.Load())

	type eventCount struct {
		name  string
		total int64
	}
	var events []eventCount
	s.eventTotals.Range(func(k, v any) bool {
		events = append(events, eventCount{
			name:  string(k.(domain.EventType)),
			total: v.(*atomic.Int64).Load(),
		})
		return true
	})
	if len(events) > 0 {
		sort.Slice(events, func(i, j int) bool { return events[i].name < events[j].name })
		fmt.Fprintf(w, "# HELP meetingmind_events_total Domain events observed on the bus.\n")
		fmt.Fprintf(w, "# TYPE meetingmind_events_total counter\n")
		for _, ec := range events {
			fmt.Fprintf(w, "meetingmind_events_total{type=%q} %d\n", ec.name, ec.total)
		}
	}

	fmt.Fprintf(w, "# HELP meetingmind_uptime_seconds Seconds since the gateway started.\n")
	fmt.Fprintf(w, "# TYPE meetingmind_uptime_seconds gauge\n")
	fmt.Fprintf(w, "meetingmind_uptime_seconds %.0f\n", time.Since(s.startTime).Seconds())

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	fmt.Fprintf(w, "# HELP go_goroutines Number of goroutines.\n")
	fmt.Fprintf(w, "# TYPE go_goroutines gauge\n")
	fmt.Fprintf(w, "go_goroutines %d\n", runtime.NumGoroutine())

	fmt.Fprintf(w, "# HELP go_memstats_alloc_bytes Bytes of allocated heap objects.\n")
	fmt.Fprintf(w, "# TYPE go_memstats_alloc_bytes gauge\n")
	fmt.Fprintf(w, "go_memstats_alloc_bytes %d\n", mem.Alloc)

	fmt.Fprintf(w, "# HELP go_memstats_sys_bytes Total bytes of memory obtained from the OS.\n")
	fmt.Fprintf(w, "# TYPE go_memstats_sys_bytes gauge\n")
	fmt.Fprintf(w, "go_memstats_sys_bytes %d\n", mem.Sys)
}
