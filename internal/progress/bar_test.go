package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestBarSteps(t *testing.T) {
	var buf bytes.Buffer
	b := New(4)
	b.SetOutput(&buf)

	b.Step("Resolving")
	if !strings.Contains(buf.String(), "1/4 Resolving") {
		t.Errorf("output = %q", buf.String())
	}

	b.Step("Fetching")
	b.Finish("Done")
	out := buf.String()
	if !strings.Contains(out, "4/4 Done") || !strings.HasSuffix(out, "\n") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, strings.Repeat("█", barWidth)) {
		t.Errorf("bar not filled on finish: %q", out)
	}

	buf.Reset()
	b.Step("ignored")
	if buf.Len() != 0 {
		t.Errorf("finished bar should not render, got %q", buf.String())
	}
}

func TestBarFailKeepsStage(t *testing.T) {
	var buf bytes.Buffer
	b := New(5)
	b.SetOutput(&buf)

	b.Step("a")
	b.Step("b")
	b.Fail("Failed")
	if !strings.Contains(buf.String(), "2/5 Failed") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestBarDoesNotOverflow(t *testing.T) {
	var buf bytes.Buffer
	b := New(1)
	b.SetOutput(&buf)
	b.Step("a")
	b.Step("b")
	if strings.Contains(buf.String(), "2/1") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{5 * time.Second, "5s"},
		{90 * time.Second, "1m30s"},
		{2*time.Hour + 5*time.Minute, "2h5m"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
