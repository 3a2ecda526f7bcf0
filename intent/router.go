package intent

import (
	"github.com/poiesic/asha/core"
	"github.com/poiesic/asha/sanitize"
)

// ClarifyUploadMessage is returned to the patient when an upload is requested
// but nothing has been attached yet.
const ClarifyUploadMessage = "Please attach a PDF/Image and click Process."

// Router turns messages into route decisions.
type Router struct {
	classifier *Classifier
}

// NewRouter returns a router backed by classifier. A nil classifier selects
// the built-in rules.
func NewRouter(classifier *Classifier) *Router {
	if classifier == nil {
		classifier = defaultClassifier
	}
	return &Router{classifier: classifier}
}

var defaultRouter = NewRouter(nil)

// Route classifies and routes msg with the built-in rules.
func Route(msg core.Message) core.RouteDecision {
	return defaultRouter.Route(msg)
}

// Route sanitizes and classifies msg.Text, then maps the intent to an action.
func (r *Router) Route(msg core.Message) core.RouteDecision {
	return RouteIntent(r.classifier.Classify(sanitize.Text(msg.Text)), msg)
}

// RouteIntent maps an already classified intent to its action. The mapping
// depends only on the intent and msg.HasPendingUpload; msg.Text is ignored.
func RouteIntent(intent core.Intent, msg core.Message) core.RouteDecision {
	namespace := msg.Namespace
	if namespace == "" {
		namespace = core.DefaultNamespace
	}
	var patientID any
	if msg.PatientID != "" {
		patientID = msg.PatientID
	}

	switch intent {
	case core.IntentUploadParse:
		params := map[string]any{
			core.ParamPatientID:    patientID,
			core.ParamNeedUpload:   true,
			core.ParamUsePatientNS: true,
			core.ParamNamespace:    namespace,
		}
		if msg.HasPendingUpload {
			return core.RouteDecision{Intent: intent, Action: core.ActionExtract, Params: params}
		}
		params[core.ParamMessage] = ClarifyUploadMessage
		return core.RouteDecision{Intent: intent, Action: core.ActionClarify, Params: params}

	case core.IntentPersonalResult:
		return core.RouteDecision{Intent: intent, Action: core.ActionShowResult, Params: map[string]any{
			core.ParamPatientID:    patientID,
			core.ParamNeedUpload:   false,
			core.ParamUsePatientNS: true,
			core.ParamNamespace:    namespace,
		}}

	case core.IntentAppointments:
		return core.RouteDecision{Intent: intent, Action: core.ActionAppointments, Params: map[string]any{
			core.ParamPatientID: patientID,
		}}

	case core.IntentTreatments:
		return core.RouteDecision{Intent: intent, Action: core.ActionTreatments, Params: map[string]any{
			core.ParamPatientID: patientID,
		}}

	case core.IntentResultsQA:
		return core.RouteDecision{Intent: intent, Action: core.ActionResultsQA, Params: map[string]any{
			core.ParamPatientID: patientID,
			core.ParamNamespace: namespace,
		}}

	case core.IntentPolicy, core.IntentFAQ, core.IntentGreeting, core.IntentSmalltalk, core.IntentUnknown:
		return core.RouteDecision{Intent: intent, Action: core.ActionAnswer, Params: map[string]any{
			core.ParamPatientID:    patientID,
			core.ParamNeedUpload:   false,
			core.ParamUsePatientNS: true,
			core.ParamNamespace:    namespace,
		}}
	}

	return core.RouteDecision{Intent: core.IntentFAQ, Action: core.ActionAnswer, Params: map[string]any{
		core.ParamPatientID: patientID,
		core.ParamNamespace: namespace,
	}}
}
