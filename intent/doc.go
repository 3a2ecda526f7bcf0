// Package intent classifies patient messages into a closed set of intents
// and maps each intent to the action that should handle it.
//
// Classification is a fixed, ordered list of pattern rules: the first rule
// whose pattern matches the normalized message wins. The order is part of the
// contract. Upload requests beat result questions, result questions beat
// administrative requests, and conversational filler comes last, so a message
// such as "thanks, please process my report" is an upload request.
//
// Routing is a pure mapping from (intent, has pending upload) to an action
// and its parameters. Neither step performs I/O or returns an error.
package intent
