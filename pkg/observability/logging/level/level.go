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

// Package level describes the supported log levels
package level

import "strings"

// Level describes the log level of an event, or of the logger's filter
type Level string

const (
	// Debug is the most verbose log level
	Debug = Level("debug")
	// Info is the default log level
	Info = Level("info")
	// Warn is the log level for events that may require attention
	Warn = Level("warn")
	// Error is the log level for failures
	Error = Level("error")
	// Fatal is the log level for unrecoverable failures
	Fatal = Level("fatal")
)

var order = map[Level]int{
	Debug: 0,
	Info:  1,
	Warn:  2,
	Error: 3,
	Fatal: 4,
}

// GetLevelID returns the numeric order of the provided Level, or -1 if
// the Level is unknown
func GetLevelID(l Level) int {
	if i, ok := order[l]; ok {
		return i
	}
	return -1
}

// GetLevel returns the Level for the provided name, defaulting to Info
func GetLevel(name string) Level {
	l := Level(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := order[l]; ok {
		return l
	}
	return Info
}
