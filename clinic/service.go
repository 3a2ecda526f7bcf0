package clinic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/asha/core"
	"github.com/poiesic/asha/storage"
)

const displayTimeLayout = "Mon 2 Jan 2006, 15:04 MST"

// Reply is the clinic's answer to a routed message.
type Reply struct {
	Action       core.Action              `json:"action"`
	Message      string                   `json:"message"`
	Appointments []*core.Appointment      `json:"appointments,omitempty"`
	Treatment    *core.Treatment          `json:"treatment,omitempty"`
	Embryology   []*core.EmbryologyUpdate `json:"embryology,omitempty"`
}

// Service answers the router's clinic actions.
type Service struct {
	Appointments *Appointments
	Treatments   *Treatments
	Results      *Results
}

// NewService creates a clinic service over the given repositories.
func NewService(appts storage.AppointmentRepository, treatments storage.TreatmentRepository, embryology storage.EmbryologyRepository, opts ...Option) (*Service, error) {
	a, err := NewAppointments(appts, opts...)
	if err != nil {
		return nil, err
	}
	t, err := NewTreatments(treatments, opts...)
	if err != nil {
		return nil, err
	}
	r, err := NewResults(embryology, opts...)
	if err != nil {
		return nil, err
	}
	return &Service{Appointments: a, Treatments: t, Results: r}, nil
}

// Respond carries out decision when it is a clinic action: appointments,
// treatments, embryology results or clarify. Other actions return
// ErrUnsupportedAction.
func (s *Service) Respond(ctx context.Context, decision core.RouteDecision) (*Reply, error) {
	switch decision.Action {
	case core.ActionClarify:
		msg, _ := decision.Params[core.ParamMessage].(string)
		return &Reply{Action: decision.Action, Message: msg}, nil

	case core.ActionAppointments:
		patientID := decision.PatientID()
		if patientID == "" {
			return nil, ErrPatientRequired
		}
		upcoming, err := s.Appointments.Upcoming(ctx, patientID, 0)
		if err != nil {
			return nil, err
		}
		return &Reply{
			Action:       decision.Action,
			Message:      describeAppointments(upcoming),
			Appointments: upcoming,
		}, nil

	case core.ActionTreatments:
		patientID := decision.PatientID()
		if patientID == "" {
			return nil, ErrPatientRequired
		}
		plan, err := s.Treatments.Status(ctx, patientID)
		if errors.Is(err, storage.ErrNotFound) {
			return &Reply{Action: decision.Action, Message: "No treatment plan is on file yet."}, nil
		}
		if err != nil {
			return nil, err
		}
		return &Reply{
			Action:    decision.Action,
			Message:   describeTreatment(plan),
			Treatment: plan,
		}, nil

	case core.ActionShowResult:
		patientID := decision.PatientID()
		if patientID == "" {
			return nil, ErrPatientRequired
		}
		summary, err := s.Results.Summarize(ctx, patientID)
		if err != nil {
			return nil, err
		}
		return &Reply{
			Action:     decision.Action,
			Message:    summary.Markdown,
			Embryology: summary.Updates,
		}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedAction, decision.Action)
}

func describeAppointments(appts []*core.Appointment) string {
	if len(appts) == 0 {
		return "You have no upcoming appointments."
	}

	var b strings.Builder
	b.WriteString("Your next appointment is ")
	b.WriteString(describeAppointment(appts[0]))
	b.WriteString(".")
	if rest := len(appts) - 1; rest > 0 {
		fmt.Fprintf(&b, " %d more scheduled after that.", rest)
	}
	return b.String()
}

func describeAppointment(appt *core.Appointment) string {
	loc, err := time.LoadLocation(appt.TZ)
	if err != nil {
		loc = time.UTC
	}

	var b strings.Builder
	if appt.Type != "" {
		b.WriteString(appt.Type)
		b.WriteString(" ")
	}
	b.WriteString("on ")
	b.WriteString(appt.When.In(loc).Format(displayTimeLayout))
	if appt.Clinician != "" {
		b.WriteString(" with ")
		b.WriteString(appt.Clinician)
	}
	return b.String()
}

func describeTreatment(t *core.Treatment) string {
	msg := "Your current treatment plan is " + t.Regimen
	if t.Protocol != "" {
		msg += " (" + t.Protocol + ")"
	}
	return msg + ", started " + t.StartedAt.Format("2 Jan 2006") + "."
}
