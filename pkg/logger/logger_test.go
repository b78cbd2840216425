package logger

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newBufferLogger(t *testing.T) (*Logger, *bytes.Buffer) {
	t.Helper()
	gin.SetMode(gin.ReleaseMode)
	var buf bytes.Buffer
	return NewWithWriter(&buf, "info"), &buf
}

func TestWithRequestIDTagsHTTPErrors(t *testing.T) {
	log, buf := newBufferLogger(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/structures/lib/autobook", nil)

	log.WithRequestID("req-42").LogHTTPError(c, errors.New("upstream down"), http.StatusBadGateway)

	out := buf.String()
	for _, want := range []string{`"request_id":"req-42"`, `"status":502`, `"error":"upstream down"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log %s missing %s", out, want)
		}
	}
}

func TestWithErrorAddsErrorField(t *testing.T) {
	log, buf := newBufferLogger(t)

	log.WithError(errors.New("guard gone")).WarnContext(context.Background(), "Failed to release booking guard")

	if out := buf.String(); !strings.Contains(out, `"error":"guard gone"`) || !strings.Contains(out, `"level":"WARN"`) {
		t.Errorf("log = %s", out)
	}
}

func TestInfoWithContextWritesFields(t *testing.T) {
	log, buf := newBufferLogger(t)

	log.InfoWithContext(context.Background(), "Auto-booking completed", map[string]interface{}{
		"seat_number": 47,
		"preferred":   true,
	})

	out := buf.String()
	for _, want := range []string{`"msg":"Auto-booking completed"`, `"seat_number":47`, `"preferred":true`} {
		if !strings.Contains(out, want) {
			t.Errorf("log %s missing %s", out, want)
		}
	}
}
