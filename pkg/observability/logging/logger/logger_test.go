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

package logger

import (
	"strings"
	"testing"

	"github.com/trickstercache/tiercache/pkg/observability/logging"
	"github.com/trickstercache/tiercache/pkg/observability/logging/level"
)

func TestPackageLogger(t *testing.T) {
	sb := &strings.Builder{}
	SetLogger(logging.StreamLogger(sb, level.Info))
	SetLogger(nil) // ignored
	defer SetLogger(logging.ConsoleLogger(level.Info))

	Info("event-one", logging.Pairs{"key": "value"})
	if !strings.Contains(sb.String(), "event=event-one") {
		t.Errorf("expected event written via the package logger, got %s", sb.String())
	}

	SetLogLevel(level.Error)
	if Level() != level.Error {
		t.Errorf("expected level error got %s", Level())
	}
	Warn("suppressed", nil)
	if strings.Contains(sb.String(), "suppressed") {
		t.Error("expected warn suppressed at error level")
	}
	Log(level.Error, "direct", nil)
	Error("also-direct", nil)
	if !strings.Contains(sb.String(), "event=direct") ||
		!strings.Contains(sb.String(), "event=also-direct") {
		t.Errorf("expected error events written, got %s", sb.String())
	}
	Debug("gone", nil)
	if strings.Contains(sb.String(), "gone") {
		t.Error("expected debug suppressed at error level")
	}
	if Logger() == nil {
		t.Error("expected a non-nil package logger")
	}
}
