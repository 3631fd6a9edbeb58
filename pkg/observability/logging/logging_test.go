/*
 * Copyright 2018 The Trickster Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/trickstercache/tiercache/pkg/observability/logging/level"
)

func TestStreamLoggerOutput(t *testing.T) {
	sb := &strings.Builder{}
	l := StreamLogger(sb, level.Info)
	l.Info("test event", Pairs{"key": "value", "count": 3})

	out := sb.String()
	if !strings.Contains(out, "level=info") {
		t.Errorf("expected level=info in %s", out)
	}
	if !strings.Contains(out, `event="test event"`) {
		t.Errorf("expected quoted event in %s", out)
	}
	if !strings.Contains(out, "count=3 key=value") {
		t.Errorf("expected sorted pairs in %s", out)
	}
}

func TestLogLevelFilter(t *testing.T) {
	sb := &strings.Builder{}
	l := StreamLogger(sb, level.Warn)
	l.Debug("quiet", nil)
	l.Info("quiet", nil)
	if sb.Len() != 0 {
		t.Errorf("expected below-level events suppressed, got %s", sb.String())
	}
	l.Error("loud", nil)
	if !strings.Contains(sb.String(), "event=loud") {
		t.Errorf("expected error event written, got %s", sb.String())
	}

	l.SetLogLevel(level.Debug)
	if l.Level() != level.Debug {
		t.Errorf("expected level debug got %s", l.Level())
	}
	l.Debug("nowloud", nil)
	if !strings.Contains(sb.String(), "event=nowloud") {
		t.Error("expected debug event written after level change")
	}
}

func TestLogInvalidLevel(t *testing.T) {
	sb := &strings.Builder{}
	l := StreamLogger(sb, level.Debug)
	l.Log(level.Level("nonsense"), "event", nil)
	if sb.Len() != 0 {
		t.Errorf("expected unknown-level events discarded, got %s", sb.String())
	}
}

func TestNoopLogger(t *testing.T) {
	l := NoopLogger()
	l.Error("discarded", Pairs{"key": "value"})
}

func TestFileLogger(t *testing.T) {
	file := filepath.Join(t.TempDir(), "tiercache.log")
	l := New(&Options{LogFile: file, LogLevel: "info"})
	l.Info("written to disk", nil)
	l.Close()

	b, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `event="written to disk"`) {
		t.Errorf("expected the event in the log file, got %s", string(b))
	}
}

func TestNewDefaults(t *testing.T) {
	l := New(nil)
	if l.Level() != level.Info {
		t.Errorf("expected default level info got %s", l.Level())
	}
}
