// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import "errors"

var (
	// ErrStorageClosed is returned by a repository used after Close.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrSerializationFailed wraps encode and decode failures of manifest and entry records.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrTruncatedData means a record ended before all of its fields were read.
	ErrTruncatedData = errors.New("truncated data")

	// ErrUnsupportedVersion indicates a persisted index written by an incompatible format version.
	ErrUnsupportedVersion = errors.New("unsupported index format version")
)
