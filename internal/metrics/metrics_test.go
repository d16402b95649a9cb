package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHandler_ExposesBuildMetrics(t *testing.T) {
	RecordBuild(true, 2*time.Second)
	RecordBuild(false, time.Second)
	RecordDeploy(true)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	s := string(body)
	for _, want := range []string{
		`forge_builds_total{status="success"}`,
		`forge_builds_total{status="failure"}`,
		`forge_deploys_total{status="success"}`,
		"forge_build_duration_seconds_bucket",
		"forge_last_build_timestamp_seconds",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
