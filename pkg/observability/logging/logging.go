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

// Package logging provides a leveled key/value logger writing to the
// console or to a size-managed rolling log file
package logging

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/trickstercache/tiercache/pkg/observability/logging/level"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

var (
	_ Logger    = &logger{}
	_ io.Writer = &logger{}
)

// Logger is the interface for the tiercache logger
type Logger interface {
	SetLogLevel(level.Level)
	Level() level.Level
	Close()
	//
	Log(logLevel level.Level, event string, detail Pairs)
	Debug(event string, detail Pairs)
	Info(event string, detail Pairs)
	Warn(event string, detail Pairs)
	Error(event string, detail Pairs)
}

// Pairs represents a key=value pair that helps to describe a log event
type Pairs map[string]any

// Options configures a Logger created with New
type Options struct {
	// LogFile is the path of the rolling log file; empty means stdout
	LogFile string `yaml:"log_file,omitempty"`
	// LogLevel is the minimum level an event must have to be written
	LogLevel string `yaml:"log_level,omitempty"`
}

// New returns a Logger for the provided options. When a log file is
// configured, output rolls via lumberjack.
func New(opts *Options) Logger {
	l := &logger{now: time.Now}
	if opts == nil || opts.LogFile == "" {
		l.writer = os.Stdout
	} else {
		l.writer = &lumberjack.Logger{
			Filename:   opts.LogFile,
			MaxSize:    256, // megabytes
			MaxBackups: 80,
			MaxAge:     7, // days
			Compress:   true,
		}
	}
	if opts != nil {
		l.SetLogLevel(level.GetLevel(opts.LogLevel))
	} else {
		l.SetLogLevel(level.Info)
	}
	return l
}

// ConsoleLogger returns a Logger that writes to stdout at the provided level
func ConsoleLogger(logLevel level.Level) Logger {
	l := &logger{now: time.Now, writer: os.Stdout}
	l.SetLogLevel(logLevel)
	return l
}

// NoopLogger returns a Logger that discards all events
func NoopLogger() Logger {
	l := &logger{now: time.Now, writer: io.Discard}
	l.SetLogLevel(level.Error)
	l.levelID = int(^uint(0) >> 1)
	return l
}

// StreamLogger returns a Logger that writes to the provided writer; used
// in tests to capture output
func StreamLogger(w io.Writer, logLevel level.Level) Logger {
	l := &logger{now: time.Now, writer: w}
	l.SetLogLevel(logLevel)
	return l
}

type logger struct {
	mtx     sync.Mutex
	writer  io.Writer
	lvl     level.Level
	levelID int
	now     func() time.Time
}

func (l *logger) SetLogLevel(logLevel level.Level) {
	l.mtx.Lock()
	l.lvl = logLevel
	l.levelID = level.GetLevelID(logLevel)
	l.mtx.Unlock()
}

func (l *logger) Level() level.Level {
	return l.lvl
}

func (l *logger) Write(b []byte) (int, error) {
	return l.writer.Write(b)
}

func (l *logger) Close() {
	if c, ok := l.writer.(io.Closer); ok {
		c.Close()
	}
}

func (l *logger) Log(logLevel level.Level, event string, detail Pairs) {
	id := level.GetLevelID(logLevel)
	if id < 0 {
		return
	}
	l.mtx.Lock()
	defer l.mtx.Unlock()
	if id < l.levelID {
		return
	}
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "time=%s app=tiercache level=%s event=%s",
		l.now().UTC().Format(time.RFC3339Nano), logLevel,
		quoteAsNeeded(event))
	keys := make([]string, 0, len(detail))
	for k := range detail {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(sb, " %s=%s", k, quoteAsNeeded(fmt.Sprintf("%v", detail[k])))
	}
	sb.WriteString("\n")
	l.writer.Write([]byte(sb.String()))
}

func quoteAsNeeded(s string) string {
	if strings.ContainsAny(s, " \t\"") {
		return fmt.Sprintf("%q", s)
	}
	return s
}

func (l *logger) Debug(event string, detail Pairs) {
	l.Log(level.Debug, event, detail)
}

func (l *logger) Info(event string, detail Pairs) {
	l.Log(level.Info, event, detail)
}

func (l *logger) Warn(event string, detail Pairs) {
	l.Log(level.Warn, event, detail)
}

func (l *logger) Error(event string, detail Pairs) {
	l.Log(level.Error, event, detail)
}
