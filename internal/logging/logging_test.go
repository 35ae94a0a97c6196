package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
)

func TestLogger_SilentByDefault(t *testing.T) {
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Fatal("default logger should be disabled")
	}
}

func TestSet(t *testing.T) {
	var buf bytes.Buffer
	Set(slog.New(slog.NewTextHandler(&buf, nil)))
	Logger().Info("hello", "k", 1)
	if !bytes.Contains(buf.Bytes(), []byte("hello")) {
		t.Errorf("record not written: %q", buf.String())
	}

	Set(nil)
	buf.Reset()
	Logger().Error("dropped")
	if buf.Len() != 0 {
		t.Errorf("nil restored logger still writes: %q", buf.String())
	}
}
