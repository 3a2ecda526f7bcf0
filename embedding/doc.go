// Package embedding turns raw texts into vectors through an ordered cascade
// of providers.
//
// A Pipeline sanitizes its input and then asks each provider in turn until
// one succeeds. A provider that reports ai.ErrMissingCredential,
// ai.ErrProviderUnavailable or ai.ErrEmptyResponse, or that exceeds the
// per-provider timeout, is skipped; any other error stops the cascade.
// The default cascade is remote API, then local model, then hash, and the
// hash provider cannot fail, so Embed on a default pipeline always returns
// vectors for non-empty input.
//
//	pipeline, err := embedding.NewDefaultPipeline(ai.NewConfig(ai.WithAPIKey(key)))
//	if err != nil {
//	    return err
//	}
//	defer pipeline.Close()
//
//	result, err := pipeline.Embed(ctx, []string{"What is a day-5 blastocyst?"})
//	// result.Backend is "openai", "sbert", "hash" or "empty"
package embedding
