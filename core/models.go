package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

type ID uint64

func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// DefaultNamespace is the retrieval namespace used when a caller supplies none.
const DefaultNamespace = "patient_education"

// PatientNamespace returns the retrieval namespace that scopes a patient's own documents.
func PatientNamespace(patientID string) string {
	return "patient:" + patientID
}

// Message is a single patient utterance plus the context the router needs.
type Message struct {
	Text             string
	PatientID        string // optional
	HasPendingUpload bool   // an uploaded file is waiting to be processed
	Namespace        string // defaults to DefaultNamespace
}

type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

type Appointment struct {
	Id         ID
	PatientID  string
	When       time.Time // UTC
	TZ         string
	Type       string
	Clinician  string
	Notes      string
	Status     AppointmentStatus
	InsertedAt time.Time
	UpdatedAt  time.Time
}

type TreatmentStatus string

const (
	TreatmentOngoing   TreatmentStatus = "ongoing"
	TreatmentCompleted TreatmentStatus = "completed"
)

type Treatment struct {
	Id         ID
	PatientID  string
	Regimen    string
	Protocol   string
	Notes      string
	Status     TreatmentStatus
	StartedAt  time.Time
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// TreatmentID derives the content-based ID of a patient's treatment plan.
// A patient has at most one plan per regimen.
func TreatmentID(patientID, regimen string) ID {
	return IDFromContent(patientID + "\x00" + regimen)
}

// NotReported marks an embryo count the lab did not record.
const NotReported = -1

// EmbryologyUpdate is one daily lab entry for a patient's embryos.
type EmbryologyUpdate struct {
	Id         ID
	PatientID  string
	Day        int    // days after retrieval; 0 is retrieval day
	Stage      string // e.g. fertilization, cleavage, blastocyst
	Total      int    // embryos observed, or NotReported
	Good       int    // good-quality embryos, or NotReported
	Grades     string // free text, e.g. "4AA, 4BB"
	Notes      string
	Date       time.Time // UTC
	InsertedAt time.Time
}
