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

package options

// Options is a collection of Badger client configurations
type Options struct {
	// Directory represents the path on disk where the Badger database resides
	Directory string `yaml:"directory,omitempty"`
	// ValueDirectory represents the path on disk where the Badger value
	// log is stored; defaults to Directory when empty
	ValueDirectory string `yaml:"value_directory,omitempty"`
}

// New returns a new Badger Options Reference with default values set
func New() *Options {
	return &Options{
		Directory:      "/tmp/tiercache",
		ValueDirectory: "/tmp/tiercache",
	}
}
