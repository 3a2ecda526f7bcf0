// Package clinic carries out the appointments, treatments and embryology
// results actions chosen by the router.
//
// Appointments supports booking, listing upcoming visits, finding the next
// one and cancelling. Treatments records a patient's plan per regimen and
// reports the current plan and its history. Results records daily
// embryology lab updates and summarizes them for the patient, optionally
// through a Narrator. Service ties them to a
// core.RouteDecision so a routed message can be answered directly:
//
//	decision := intent.Route(core.Message{Text: "when is my next scan?", PatientID: "p-1"})
//	reply, err := service.Respond(ctx, decision)
package clinic
