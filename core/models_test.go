package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantSame bool
	}{
		{
			name:     "same content produces same ID",
			content:  "test content",
			wantSame: true,
		},
		{
			name:     "empty string",
			content:  "",
			wantSame: true,
		},
		{
			name:     "long content",
			content:  "This is a much longer piece of content that should still hash consistently",
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if tt.wantSame && id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestTreatmentID(t *testing.T) {
	if TreatmentID("p1", "ivf") != TreatmentID("p1", "ivf") {
		t.Errorf("TreatmentID() is not stable")
	}
	if TreatmentID("p1", "ivf") == TreatmentID("p2", "ivf") {
		t.Errorf("TreatmentID() collided across patients")
	}
	// The separator keeps "p1"+"1ivf" apart from "p11"+"ivf".
	if TreatmentID("p1", "1ivf") == TreatmentID("p11", "ivf") {
		t.Errorf("TreatmentID() collided on concatenation boundary")
	}
}

func TestPatientNamespace(t *testing.T) {
	if got := PatientNamespace("abc"); got != "patient:abc" {
		t.Errorf("PatientNamespace() = %q", got)
	}
}

func TestIntentValid(t *testing.T) {
	for _, intent := range Intents {
		if !intent.Valid() {
			t.Errorf("%q should be valid", intent)
		}
	}
	if Intent("clinical_faq").Valid() {
		t.Errorf("undefined intent reported as valid")
	}
	if len(Intents) != 10 {
		t.Errorf("expected 10 intents, got %d", len(Intents))
	}
}

func TestRouteDecisionAccessors(t *testing.T) {
	d := RouteDecision{
		Intent: IntentUploadParse,
		Action: ActionClarify,
		Params: map[string]any{
			ParamPatientID:  "p1",
			ParamNamespace:  "ns",
			ParamNeedUpload: true,
		},
	}
	if d.PatientID() != "p1" || d.Namespace() != "ns" || !d.NeedUpload() {
		t.Errorf("unexpected accessor values: %q %q %v", d.PatientID(), d.Namespace(), d.NeedUpload())
	}

	var empty RouteDecision
	if empty.PatientID() != "" || empty.Namespace() != "" || empty.NeedUpload() {
		t.Errorf("zero decision should report empty params")
	}
}
