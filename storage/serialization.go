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

import (
	"fmt"

	"github.com/poiesic/asha/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, IDMUS.Size(id))
	IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := IDMUS.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: id: %w", ErrSerializationFailed, err)
	}
	return id, nil
}

// MarshalAppointment serializes an Appointment to bytes.
func MarshalAppointment(appt *core.Appointment) []byte {
	buf := make([]byte, AppointmentMUS.Size(*appt))
	AppointmentMUS.Marshal(*appt, buf)
	return buf
}

// UnmarshalAppointment deserializes an Appointment from bytes.
func UnmarshalAppointment(data []byte) (*core.Appointment, error) {
	appt, _, err := AppointmentMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: appointment: %w", ErrSerializationFailed, err)
	}
	return &appt, nil
}

// MarshalTreatment serializes a Treatment to bytes.
func MarshalTreatment(treatment *core.Treatment) []byte {
	buf := make([]byte, TreatmentMUS.Size(*treatment))
	TreatmentMUS.Marshal(*treatment, buf)
	return buf
}

// UnmarshalTreatment deserializes a Treatment from bytes.
func UnmarshalTreatment(data []byte) (*core.Treatment, error) {
	treatment, _, err := TreatmentMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: treatment: %w", ErrSerializationFailed, err)
	}
	return &treatment, nil
}

// MarshalEmbryologyUpdate serializes an EmbryologyUpdate to bytes.
func MarshalEmbryologyUpdate(u *core.EmbryologyUpdate) []byte {
	buf := make([]byte, EmbryologyUpdateMUS.Size(*u))
	EmbryologyUpdateMUS.Marshal(*u, buf)
	return buf
}

// UnmarshalEmbryologyUpdate deserializes an EmbryologyUpdate from bytes.
func UnmarshalEmbryologyUpdate(data []byte) (*core.EmbryologyUpdate, error) {
	u, _, err := EmbryologyUpdateMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: embryology update: %w", ErrSerializationFailed, err)
	}
	return &u, nil
}
