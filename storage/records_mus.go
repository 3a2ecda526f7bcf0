package storage

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/asha/core"
)

// Field order is the wire format. Append new fields at the end only.

// IDMUS serializes core.ID as an unsigned varint.
var IDMUS = idMUS{}

type idMUS struct{}

func (s idMUS) Marshal(v core.ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (v core.ID, n int, err error) {
	u, n, err := varint.Uint64.Unmarshal(bs)
	return core.ID(u), n, err
}

func (s idMUS) Size(v core.ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

// timeMUS stores UTC microseconds since the Unix epoch.
var timeMUS = timeMicroMUS{}

type timeMicroMUS struct{}

func (s timeMicroMUS) Marshal(v time.Time, bs []byte) (n int) {
	return varint.Int64.Marshal(v.UnixMicro(), bs)
}

func (s timeMicroMUS) Unmarshal(bs []byte) (v time.Time, n int, err error) {
	us, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(us).UTC(), n, nil
}

func (s timeMicroMUS) Size(v time.Time) (size int) {
	return varint.Int64.Size(v.UnixMicro())
}

// fieldReader accumulates offsets and the first error while decoding a record.
type fieldReader struct {
	bs  []byte
	n   int
	err error
}

func (r *fieldReader) id() (v core.ID) {
	if r.err != nil {
		return
	}
	var n int
	v, n, r.err = IDMUS.Unmarshal(r.bs[r.n:])
	r.n += n
	return
}

func (r *fieldReader) str() (v string) {
	if r.err != nil {
		return
	}
	var n int
	v, n, r.err = ord.String.Unmarshal(r.bs[r.n:])
	r.n += n
	return
}

func (r *fieldReader) integer() (v int) {
	if r.err != nil {
		return
	}
	var (
		i int64
		n int
	)
	i, n, r.err = varint.Int64.Unmarshal(r.bs[r.n:])
	r.n += n
	return int(i)
}

func (r *fieldReader) timestamp() (v time.Time) {
	if r.err != nil {
		return
	}
	var n int
	v, n, r.err = timeMUS.Unmarshal(r.bs[r.n:])
	r.n += n
	return
}

// AppointmentMUS serializes core.Appointment.
var AppointmentMUS = appointmentMUS{}

type appointmentMUS struct{}

func (s appointmentMUS) Marshal(v core.Appointment, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.PatientID, bs[n:])
	n += timeMUS.Marshal(v.When, bs[n:])
	n += ord.String.Marshal(v.TZ, bs[n:])
	n += ord.String.Marshal(v.Type, bs[n:])
	n += ord.String.Marshal(v.Clinician, bs[n:])
	n += ord.String.Marshal(v.Notes, bs[n:])
	n += ord.String.Marshal(string(v.Status), bs[n:])
	n += timeMUS.Marshal(v.InsertedAt, bs[n:])
	n += timeMUS.Marshal(v.UpdatedAt, bs[n:])
	return
}

func (s appointmentMUS) Unmarshal(bs []byte) (v core.Appointment, n int, err error) {
	r := fieldReader{bs: bs}
	v.Id = r.id()
	v.PatientID = r.str()
	v.When = r.timestamp()
	v.TZ = r.str()
	v.Type = r.str()
	v.Clinician = r.str()
	v.Notes = r.str()
	v.Status = core.AppointmentStatus(r.str())
	v.InsertedAt = r.timestamp()
	v.UpdatedAt = r.timestamp()
	return v, r.n, r.err
}

func (s appointmentMUS) Size(v core.Appointment) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.PatientID)
	size += timeMUS.Size(v.When)
	size += ord.String.Size(v.TZ)
	size += ord.String.Size(v.Type)
	size += ord.String.Size(v.Clinician)
	size += ord.String.Size(v.Notes)
	size += ord.String.Size(string(v.Status))
	size += timeMUS.Size(v.InsertedAt)
	return size + timeMUS.Size(v.UpdatedAt)
}

// TreatmentMUS serializes core.Treatment.
var TreatmentMUS = treatmentMUS{}

type treatmentMUS struct{}

func (s treatmentMUS) Marshal(v core.Treatment, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.PatientID, bs[n:])
	n += ord.String.Marshal(v.Regimen, bs[n:])
	n += ord.String.Marshal(v.Protocol, bs[n:])
	n += ord.String.Marshal(v.Notes, bs[n:])
	n += ord.String.Marshal(string(v.Status), bs[n:])
	n += timeMUS.Marshal(v.StartedAt, bs[n:])
	n += timeMUS.Marshal(v.InsertedAt, bs[n:])
	n += timeMUS.Marshal(v.UpdatedAt, bs[n:])
	return
}

func (s treatmentMUS) Unmarshal(bs []byte) (v core.Treatment, n int, err error) {
	r := fieldReader{bs: bs}
	v.Id = r.id()
	v.PatientID = r.str()
	v.Regimen = r.str()
	v.Protocol = r.str()
	v.Notes = r.str()
	v.Status = core.TreatmentStatus(r.str())
	v.StartedAt = r.timestamp()
	v.InsertedAt = r.timestamp()
	v.UpdatedAt = r.timestamp()
	return v, r.n, r.err
}

func (s treatmentMUS) Size(v core.Treatment) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.PatientID)
	size += ord.String.Size(v.Regimen)
	size += ord.String.Size(v.Protocol)
	size += ord.String.Size(v.Notes)
	size += ord.String.Size(string(v.Status))
	size += timeMUS.Size(v.StartedAt)
	size += timeMUS.Size(v.InsertedAt)
	return size + timeMUS.Size(v.UpdatedAt)
}

// EmbryologyUpdateMUS serializes core.EmbryologyUpdate.
var EmbryologyUpdateMUS = embryologyUpdateMUS{}

type embryologyUpdateMUS struct{}

func (s embryologyUpdateMUS) Marshal(v core.EmbryologyUpdate, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.PatientID, bs[n:])
	n += varint.Int64.Marshal(int64(v.Day), bs[n:])
	n += ord.String.Marshal(v.Stage, bs[n:])
	n += varint.Int64.Marshal(int64(v.Total), bs[n:])
	n += varint.Int64.Marshal(int64(v.Good), bs[n:])
	n += ord.String.Marshal(v.Grades, bs[n:])
	n += ord.String.Marshal(v.Notes, bs[n:])
	n += timeMUS.Marshal(v.Date, bs[n:])
	n += timeMUS.Marshal(v.InsertedAt, bs[n:])
	return
}

func (s embryologyUpdateMUS) Unmarshal(bs []byte) (v core.EmbryologyUpdate, n int, err error) {
	r := fieldReader{bs: bs}
	v.Id = r.id()
	v.PatientID = r.str()
	v.Day = r.integer()
	v.Stage = r.str()
	v.Total = r.integer()
	v.Good = r.integer()
	v.Grades = r.str()
	v.Notes = r.str()
	v.Date = r.timestamp()
	v.InsertedAt = r.timestamp()
	return v, r.n, r.err
}

func (s embryologyUpdateMUS) Size(v core.EmbryologyUpdate) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.PatientID)
	size += varint.Int64.Size(int64(v.Day))
	size += ord.String.Size(v.Stage)
	size += varint.Int64.Size(int64(v.Total))
	size += varint.Int64.Size(int64(v.Good))
	size += ord.String.Size(v.Grades)
	size += ord.String.Size(v.Notes)
	size += timeMUS.Size(v.Date)
	return size + timeMUS.Size(v.InsertedAt)
}
