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


// Package storage provides the storage abstraction layer for clinic records.
//
// This package defines repository interfaces for appointments and treatment
// plans and the mus-go wire format the records are stored in. The BadgerDB
// implementation lives in the badger subpackage.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return concrete repository types
// that satisfy the interfaces declared here; consumers should hold the
// interface:
//
//	var appts storage.AppointmentRepository
//	appts, err = badger.NewAppointmentRepository(backend)
//
// # Architecture
//
//   - Repository: transaction support and Close, shared by all repositories
//   - AppointmentRepository: appointments indexed by patient and time
//   - TreatmentRepository: treatment plans keyed by patient and regimen
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	appts, err := badger.NewAppointmentRepository(backend)
//
// Use in tests with in-memory storage:
//
//	appts, treatments, backend, err := badger.NewMemoryRepositories()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
