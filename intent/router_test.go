package intent

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/poiesic/asha/core"
	"github.com/stretchr/testify/assert"
)

func answerParams(patientID any, ns string) map[string]any {
	return map[string]any{
		core.ParamPatientID:    patientID,
		core.ParamNeedUpload:   false,
		core.ParamUsePatientNS: true,
		core.ParamNamespace:    ns,
	}
}

type routeCase struct {
	intent  core.Intent
	pending bool
	want    core.RouteDecision
}

func TestRouteIntent_Exhaustive(t *testing.T) {
	const pid = "patient-7"
	const ns = "clinic_a"

	tests := []routeCase{
		{core.IntentUploadParse, true, core.RouteDecision{Intent: core.IntentUploadParse, Action: core.ActionExtract, Params: map[string]any{
			core.ParamPatientID: pid, core.ParamNeedUpload: true, core.ParamUsePatientNS: true, core.ParamNamespace: ns,
		}}},
		{core.IntentUploadParse, false, core.RouteDecision{Intent: core.IntentUploadParse, Action: core.ActionClarify, Params: map[string]any{
			core.ParamPatientID: pid, core.ParamNeedUpload: true, core.ParamUsePatientNS: true, core.ParamNamespace: ns,
			core.ParamMessage: ClarifyUploadMessage,
		}}},
	}

	for _, pending := range []bool{false, true} {
		tests = append(tests,
			routeCase{core.IntentPersonalResult, pending, core.RouteDecision{Intent: core.IntentPersonalResult, Action: core.ActionShowResult, Params: answerParams(pid, ns)}},
			routeCase{core.IntentAppointments, pending, core.RouteDecision{Intent: core.IntentAppointments, Action: core.ActionAppointments, Params: map[string]any{core.ParamPatientID: pid}}},
			routeCase{core.IntentTreatments, pending, core.RouteDecision{Intent: core.IntentTreatments, Action: core.ActionTreatments, Params: map[string]any{core.ParamPatientID: pid}}},
			routeCase{core.IntentResultsQA, pending, core.RouteDecision{Intent: core.IntentResultsQA, Action: core.ActionResultsQA, Params: map[string]any{core.ParamPatientID: pid, core.ParamNamespace: ns}}},
		)
		for _, in := range []core.Intent{core.IntentPolicy, core.IntentFAQ, core.IntentGreeting, core.IntentSmalltalk, core.IntentUnknown} {
			tests = append(tests, routeCase{in, pending, core.RouteDecision{Intent: in, Action: core.ActionAnswer, Params: answerParams(pid, ns)}})
		}
	}

	// Every intent is covered for both upload flags.
	seen := make(map[string]bool)
	for _, tt := range tests {
		seen[fmt.Sprintf("%s/%v", tt.intent, tt.pending)] = true
	}
	assert.Len(t, seen, len(core.Intents)*2)

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/pending=%v", tt.intent, tt.pending), func(t *testing.T) {
			msg := core.Message{PatientID: pid, HasPendingUpload: tt.pending, Namespace: ns}
			got := RouteIntent(tt.intent, msg)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("RouteIntent() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRouteIntent_UnrecognizedIntent(t *testing.T) {
	got := RouteIntent(core.Intent("clinical_faq"), core.Message{PatientID: "p1"})
	want := core.RouteDecision{
		Intent: core.IntentFAQ,
		Action: core.ActionAnswer,
		Params: map[string]any{
			core.ParamPatientID: "p1",
			core.ParamNamespace: core.DefaultNamespace,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RouteIntent() mismatch (-want +got):\n%s", diff)
	}
}

func TestRouteIntent_Defaults(t *testing.T) {
	got := RouteIntent(core.IntentGreeting, core.Message{})
	assert.Equal(t, core.DefaultNamespace, got.Namespace())
	assert.Nil(t, got.Params[core.ParamPatientID])
	assert.Equal(t, "", got.PatientID())
}

func TestRoute(t *testing.T) {
	t.Run("next appointment scenario", func(t *testing.T) {
		got := Route(core.Message{Text: "Hi, can you tell me my next appointment?", PatientID: "p42"})
		want := core.RouteDecision{
			Intent: core.IntentAppointments,
			Action: core.ActionAppointments,
			Params: map[string]any{core.ParamPatientID: "p42"},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Route() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("upload without attachment asks for one", func(t *testing.T) {
		got := Route(core.Message{Text: "please process my report"})
		assert.Equal(t, core.ActionClarify, got.Action)
		assert.True(t, got.NeedUpload())
		assert.Equal(t, ClarifyUploadMessage, got.Params[core.ParamMessage])
	})

	t.Run("upload with attachment extracts", func(t *testing.T) {
		got := Route(core.Message{Text: "please process my report", HasPendingUpload: true})
		assert.Equal(t, core.ActionExtract, got.Action)
		assert.True(t, got.NeedUpload())
	})

	t.Run("appointments ignore upload flag", func(t *testing.T) {
		for _, pending := range []bool{false, true} {
			got := Route(core.Message{Text: "book an appointment", HasPendingUpload: pending})
			assert.Equal(t, core.ActionAppointments, got.Action)
		}
	})

	t.Run("control characters are sanitized", func(t *testing.T) {
		got := Route(core.Message{Text: "\x00\x01  \x7f"})
		assert.Equal(t, core.IntentUnknown, got.Intent)
		assert.Equal(t, core.ActionAnswer, got.Action)
	})

	t.Run("custom classifier", func(t *testing.T) {
		r := NewRouter(NewClassifier([]Rule{NewRule(core.IntentPolicy, `.`)}))
		got := r.Route(core.Message{Text: "anything"})
		assert.Equal(t, core.IntentPolicy, got.Intent)
		assert.Equal(t, core.ActionAnswer, got.Action)
	})
}
