package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/poiesic/asha/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.TreatmentID("p-1", "antagonist")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalAppointment(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name string
		appt *core.Appointment
	}{
		{
			name: "minimal appointment",
			appt: &core.Appointment{
				Id:        core.ID(1),
				PatientID: "p-1",
				When:      now.Add(48 * time.Hour),
				Status:    core.AppointmentScheduled,
			},
		},
		{
			name: "full appointment",
			appt: &core.Appointment{
				Id:         core.ID(99),
				PatientID:  "p-2",
				When:       now,
				TZ:         "Asia/Kolkata",
				Type:       "egg retrieval",
				Clinician:  "Dr. Rao",
				Notes:      strings.Repeat("fast from midnight. ", 20),
				Status:     core.AppointmentCancelled,
				InsertedAt: now.Add(-time.Hour),
				UpdatedAt:  now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalAppointment(tt.appt)
			decoded, err := UnmarshalAppointment(data)
			require.NoError(t, err)
			assert.Equal(t, tt.appt.Id, decoded.Id)
			assert.Equal(t, tt.appt.PatientID, decoded.PatientID)
			assert.True(t, tt.appt.When.Equal(decoded.When))
			assert.Equal(t, tt.appt.TZ, decoded.TZ)
			assert.Equal(t, tt.appt.Type, decoded.Type)
			assert.Equal(t, tt.appt.Clinician, decoded.Clinician)
			assert.Equal(t, tt.appt.Notes, decoded.Notes)
			assert.Equal(t, tt.appt.Status, decoded.Status)
			assert.True(t, tt.appt.InsertedAt.Equal(decoded.InsertedAt))
			assert.True(t, tt.appt.UpdatedAt.Equal(decoded.UpdatedAt))
		})
	}
}

func TestUnmarshalAppointment_Truncated(t *testing.T) {
	data := MarshalAppointment(&core.Appointment{
		Id:        core.ID(7),
		PatientID: "p-1",
		When:      time.Now().UTC(),
		Clinician: "Dr. Rao",
		Status:    core.AppointmentScheduled,
	})

	for _, cut := range []int{0, 1, len(data) / 2, len(data) - 1} {
		_, err := UnmarshalAppointment(data[:cut])
		assert.ErrorIs(t, err, ErrSerializationFailed, "cut at %d", cut)
	}
}

func TestMarshalUnmarshalTreatment(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	treatment := &core.Treatment{
		Id:         core.TreatmentID("p-1", "long protocol"),
		PatientID:  "p-1",
		Regimen:    "long protocol",
		Protocol:   "GnRH agonist down-regulation",
		Notes:      "baseline scan day 2",
		Status:     core.TreatmentOngoing,
		StartedAt:  now.Add(-72 * time.Hour),
		InsertedAt: now,
		UpdatedAt:  now,
	}

	decoded, err := UnmarshalTreatment(MarshalTreatment(treatment))
	require.NoError(t, err)
	assert.Equal(t, treatment, decoded)
}

func TestUnmarshalTreatment_Invalid(t *testing.T) {
	_, err := UnmarshalTreatment([]byte{0x05, 'a'})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestZeroTimeRoundTrip(t *testing.T) {
	decoded, err := UnmarshalTreatment(MarshalTreatment(&core.Treatment{Regimen: "x"}))
	require.NoError(t, err)
	assert.True(t, decoded.StartedAt.IsZero())
	assert.True(t, decoded.InsertedAt.IsZero())
}

func TestMarshalUnmarshalEmbryologyUpdate(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	update := &core.EmbryologyUpdate{
		Id:         core.ID(7),
		PatientID:  "p-1",
		Day:        3,
		Stage:      "cleavage",
		Total:      8,
		Good:       core.NotReported,
		Grades:     "8-cell grade 1",
		Notes:      "two slow",
		Date:       now.Add(-24 * time.Hour),
		InsertedAt: now,
	}

	decoded, err := UnmarshalEmbryologyUpdate(MarshalEmbryologyUpdate(update))
	require.NoError(t, err)
	assert.Equal(t, update, decoded)
}

func TestUnmarshalEmbryologyUpdate_Truncated(t *testing.T) {
	data := MarshalEmbryologyUpdate(&core.EmbryologyUpdate{PatientID: "p-1", Day: 5, Stage: "blastocyst"})
	for _, cut := range []int{0, 1, len(data) / 2, len(data) - 1} {
		_, err := UnmarshalEmbryologyUpdate(data[:cut])
		assert.ErrorIs(t, err, ErrSerializationFailed, "cut at %d", cut)
	}
}
