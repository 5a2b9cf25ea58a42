package monitor

import (
	"fmt"
	"strconv"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/webitel/liveapi-bridge/internal/domain/model"
)

const historySize = 60

// History keeps the most recent connection counts for the sparkline.
type History struct {
	points []float64
}

func (h *History) Push(v float64) {
	h.points = append(h.points, v)
	if len(h.points) > historySize {
		h.points = h.points[len(h.points)-historySize:]
	}
}

func (h *History) Points() []float64 {
	if len(h.points) == 0 {
		return []float64{0}
	}
	return h.points
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// Headline is the one-line summary shown above the table.
func Headline(s Snapshot) string {
	state := "unreachable"
	if s.ReportErr == nil {
		state = s.Report.Status.String()
	}

	serving := "unreachable"
	if s.ServingErr == nil {
		serving = s.Serving.String()
	}

	return fmt.Sprintf("bridge: %s | grpc: %s | %s", state, serving, s.At.Format("15:04:05"))
}

// Color picks the termui color name for the headline border.
func Color(s Snapshot) string {
	switch {
	case s.ReportErr != nil:
		return "red"
	case s.Report.Status == model.HealthHealthy:
		return "green"
	case s.Report.Status.Serving():
		return "yellow"
	default:
		return "red"
	}
}

// Rows flattens the report into table rows, header first.
func Rows(s Snapshot) [][]string {
	rows := [][]string{{"signal", "value"}}
	if s.ReportErr != nil {
		return append(rows, []string{"error", s.ReportErr.Error()})
	}

	r := s.Report
	rows = append(rows,
		[]string{"connected", yesNo(r.Connected)},
		[]string{"connections", strconv.Itoa(r.Connections)},
		[]string{"responsive", yesNo(r.Responsive)},
		[]string{"store available", yesNo(r.StoreAvailable)},
		[]string{"store entries", strconv.Itoa(r.StoreEntries)},
		[]string{"backend up", yesNo(r.BackendUp)},
		[]string{"fan-out streaming", yesNo(r.FanOutStreaming)},
		[]string{"fan-out messages", strconv.FormatUint(r.Fanout.TotalMessages, 10)},
		[]string{"fan-out errors", strconv.FormatUint(r.Fanout.Errors, 10)},
		[]string{"last publish", orDash(r.Fanout.LastPublish)},
	)
	if s.ServingErr == nil && s.Serving != healthpb.HealthCheckResponse_SERVING {
		rows = append(rows, []string{"grpc", s.Serving.String()})
	}
	return rows
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
