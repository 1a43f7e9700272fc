package logx

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestPrettyZH_Info(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "debug", Format: "pretty", Locale: "zh-CN", Color: "never", Writer: &buf})
	Infof("hello %s", "world")
	if out := buf.String(); !strings.Contains(out, "[信息] hello world") {
		t.Fatalf("expect zh label, got: %q", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "warn", Locale: "en", Color: "never", Writer: &buf})
	Infof("should not print")
	Warnf("warn on")
	out := buf.String()
	if strings.Contains(out, "should not print") { t.Fatalf("info should be filtered when level=warn") }
	if !strings.Contains(out, "[WARN] warn on") { t.Fatalf("expect warn line, got: %q", out) }
}

func TestLevelOff(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "off", Writer: &buf})
	Errorf("boom")
	if buf.Len() != 0 { t.Fatalf("expect silence, got: %q", buf.String()) }
}

func TestErrorfColorAlways(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	var buf bytes.Buffer
	Init(Options{Level: "error", Locale: "zh-CN", Color: "always", Writer: &buf})
	Errorf("boom %d", 1)
	out := buf.String()
	if !strings.Contains(out, "[错误]") { t.Fatalf("expect error label, got: %q", out) }
	if !strings.Contains(out, "\x1b[31m") { t.Fatalf("expect ansi color when color=always") }
}

func TestNoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	Init(Options{Color: "always", Writer: &buf})
	Infof("x")
	if strings.Contains(buf.String(), "\x1b[") { t.Fatalf("NO_COLOR must disable colors") }
}

func TestWithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewPrettyHandler(&buf, slog.LevelInfo, "en", "never"))
	logger.With("component", "sheets").WithGroup("row").Info("mapped", "n", 3)
	s := buf.String()
	if !strings.Contains(s, "component=sheets") || !strings.Contains(s, "row.n=3") {
		t.Fatalf("unexpected attrs: %q", s)
	}
}

func TestJSONFormatAndWith(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Format: "json", Writer: &buf})
	With("component", "build").Info("done")
	s := buf.String()
	if !strings.Contains(s, `"component":"build"`) || !strings.Contains(s, `"msg":"done"`) {
		t.Fatalf("unexpected json: %q", s)
	}
}
