package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/asha/core"
)

// Key prefixes for different data types
const (
	appointmentPrefix        = "apprec"
	appointmentPatientPrefix = "appat"
	appointmentIDSeq         = "apprecseq"
	treatmentPrefix          = "trtrec"
	treatmentPatientPrefix   = "trtpat"
	embryologyPrefix         = "embrec"
	embryologyPatientPrefix  = "embpat"
	embryologyIDSeq          = "embrecseq"
)

// storedTime normalizes t to what the record codec keeps: UTC with
// microsecond precision.
func storedTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// makeAppointmentKey generates a key for an appointment by ID.
func makeAppointmentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", appointmentPrefix, id))
}

// makeTreatmentKey generates a key for a treatment plan by ID.
func makeTreatmentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", treatmentPrefix, id))
}

// makeEmbryologyKey generates a key for an embryology update by ID.
func makeEmbryologyKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", embryologyPrefix, id))
}

// makePatientPrefix generates the index prefix for one patient.
// Format: prefix:patientHash
// Patient IDs are free text, so they are hashed to a fixed width to keep one
// patient's prefix from matching another's. Readers verify PatientID on the
// record itself.
func makePatientPrefix(prefix, patientID string) []byte {
	buf := make([]byte, len(prefix)+1+8)
	offset := copy(buf, prefix)
	buf[offset] = ':'
	binary.BigEndian.PutUint64(buf[offset+1:], uint64(core.IDFromContent(patientID)))
	return buf
}

// makePatientTimeKey generates a composite key for a per-patient time index.
// Format: prefix:patientHash:timestamp:id
func makePatientTimeKey(prefix, patientID string, timestamp time.Time, id core.ID) []byte {
	buf := makePartialPatientTimeKey(prefix, patientID, timestamp)
	// Write in BigEndian order so lexicographic sort works correctly
	return binary.BigEndian.AppendUint64(buf, uint64(id))
}

// makePartialPatientTimeKey generates a partial key for time range queries.
// Format: prefix:patientHash:timestamp
func makePartialPatientTimeKey(prefix, patientID string, timestamp time.Time) []byte {
	buf := makePatientPrefix(prefix, patientID)
	return binary.BigEndian.AppendUint64(buf, uint64(timestamp.UnixMicro()))
}
