package core

// Intent is the closed set of labels the classifier can assign to a message.
type Intent string

const (
	IntentUploadParse    Intent = "upload_parse"
	IntentPersonalResult Intent = "personal_result"
	IntentResultsQA      Intent = "results_qa"
	IntentAppointments   Intent = "appointments"
	IntentTreatments     Intent = "treatments"
	IntentPolicy         Intent = "policy"
	IntentFAQ            Intent = "faq"
	IntentGreeting       Intent = "greeting"
	IntentSmalltalk      Intent = "smalltalk"
	IntentUnknown        Intent = "unknown"
)

// Intents lists every defined intent.
var Intents = []Intent{
	IntentUploadParse,
	IntentPersonalResult,
	IntentResultsQA,
	IntentAppointments,
	IntentTreatments,
	IntentPolicy,
	IntentFAQ,
	IntentGreeting,
	IntentSmalltalk,
	IntentUnknown,
}

func (i Intent) Valid() bool {
	for _, known := range Intents {
		if i == known {
			return true
		}
	}
	return false
}

// Action is the downstream operation selected to satisfy an intent.
type Action string

const (
	ActionExtract      Action = "extract"
	ActionClarify      Action = "clarify"
	ActionShowResult   Action = "show_result"
	ActionAppointments Action = "appointments"
	ActionTreatments   Action = "treatments"
	ActionResultsQA    Action = "results_qa"
	ActionAnswer       Action = "answer"
)

// Parameter names carried in RouteDecision.Params.
const (
	ParamPatientID    = "patient_id"
	ParamNamespace    = "namespace"
	ParamNeedUpload   = "need_upload"
	ParamUsePatientNS = "use_patient_ns"
	ParamMessage      = "message"
)

// RouteDecision describes the action chosen for a message. It is built
// fresh for every call and never persisted.
type RouteDecision struct {
	Intent Intent         `json:"intent"`
	Action Action         `json:"action"`
	Params map[string]any `json:"params"`
}

// PatientID returns the patient_id parameter, or "" when absent.
func (d RouteDecision) PatientID() string {
	id, _ := d.Params[ParamPatientID].(string)
	return id
}

// Namespace returns the namespace parameter, or "" when absent.
func (d RouteDecision) Namespace() string {
	ns, _ := d.Params[ParamNamespace].(string)
	return ns
}

// NeedUpload reports the need_upload parameter.
func (d RouteDecision) NeedUpload() bool {
	need, _ := d.Params[ParamNeedUpload].(bool)
	return need
}
