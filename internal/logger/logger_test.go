package logger_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/probablyarth/antidup-go"
	"github.com/probablyarth/antidup-go/internal/logger"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(&buf)

	l.Infof("hello %d", 1)
	l.Warnf("careful")
	l.Errorf("broken: %s", "disk")

	out := buf.String()
	for _, want := range []string{"[INFO] hello 1", "[WARN] careful", "[ERROR] broken: disk"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q missing %q", out, want)
		}
	}
}

func TestNilLoggerDiscards(t *testing.T) {
	var l *logger.Logger
	l.Infof("nobody hears this")
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestOpenCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "antidup.log")
	l, err := logger.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	l.Infof("written")
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "[INFO] written") {
		t.Fatalf("got %q", data)
	}
}

func TestObserverLogsCacheEvents(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(&buf)

	c := antidup.NewDictCache[string, int](antidup.WithObserver(l.Observer("users")))
	if _, err := c.Execute("a", func() (int, error) { return 1, nil }); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Execute("a", func() (int, error) { return 2, nil }); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, "[INFO] cache=users event=miss key=a") {
		t.Fatalf("missing miss line in %q", out)
	}
	if !strings.Contains(out, "[INFO] cache=users event=hit key=a") {
		t.Fatalf("missing hit line in %q", out)
	}
}
