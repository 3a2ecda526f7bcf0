// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package asha wires the clinic assistant together: intent routing, the
// clinic record store, the embedding cascade and document ingestion.
package asha

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/asha/ai"
	"github.com/poiesic/asha/ai/openai"
	"github.com/poiesic/asha/clinic"
	"github.com/poiesic/asha/core"
	"github.com/poiesic/asha/embedding"
	"github.com/poiesic/asha/ingestion"
	"github.com/poiesic/asha/intent"
	"github.com/poiesic/asha/storage"
	"github.com/poiesic/asha/storage/badger"
)

// Assistant routes patient messages and answers the clinic actions it can
// carry out itself.
type Assistant struct {
	backend       *badger.Backend
	apptRepo      storage.AppointmentRepository
	treatmentRepo storage.TreatmentRepository
	resultRepo    storage.EmbryologyRepository
	embedder      *embedding.Pipeline
	router        *intent.Router
	service       *clinic.Service
	namespace     string
	logger        *slog.Logger
}

// Option configures an Assistant.
type Option func(*options)

type options struct {
	aiConfig   *ai.Config
	inMemory   bool
	namespace  string
	embedder   *embedding.Pipeline
	classifier *intent.Classifier
	clinicOpts []clinic.Option
	logger     *slog.Logger
}

// WithAIConfig sets the embedding provider configuration.
func WithAIConfig(cfg *ai.Config) Option {
	return func(o *options) {
		o.aiConfig = cfg
	}
}

// WithInMemory keeps the clinic store in memory. The path passed to
// NewAssistant is ignored.
func WithInMemory() Option {
	return func(o *options) {
		o.inMemory = true
	}
}

// WithNamespace sets the retrieval namespace used for messages that carry none.
func WithNamespace(namespace string) Option {
	return func(o *options) {
		o.namespace = namespace
	}
}

// WithEmbeddingPipeline replaces the default provider cascade.
func WithEmbeddingPipeline(p *embedding.Pipeline) Option {
	return func(o *options) {
		o.embedder = p
	}
}

// WithClassifier replaces the built-in intent rules.
func WithClassifier(c *intent.Classifier) Option {
	return func(o *options) {
		o.classifier = c
	}
}

// WithClinicOptions passes options through to the clinic services.
func WithClinicOptions(opts ...clinic.Option) Option {
	return func(o *options) {
		o.clinicOpts = append(o.clinicOpts, opts...)
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// NewAssistant opens the clinic store at filePath and builds the embedding
// cascade.
func NewAssistant(filePath string, opts ...Option) (*Assistant, error) {
	o := &options{
		aiConfig:  ai.DefaultConfig(),
		namespace: core.DefaultNamespace,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}

	embedder := o.embedder
	if embedder == nil {
		var err error
		embedder, err = embedding.NewDefaultPipeline(o.aiConfig, embedding.WithLogger(o.logger))
		if err != nil {
			return nil, err
		}
	}

	backend, err := badger.OpenBackend(filePath, o.inMemory)
	if err != nil {
		embedder.Close()
		return nil, err
	}

	apptRepo, err := badger.NewAppointmentRepository(backend)
	if err != nil {
		embedder.Close()
		backend.Close()
		return nil, err
	}

	treatmentRepo, err := badger.NewTreatmentRepository(backend)
	if err != nil {
		embedder.Close()
		apptRepo.Close()
		backend.Close()
		return nil, err
	}

	resultRepo, err := badger.NewEmbryologyRepository(backend)
	if err != nil {
		embedder.Close()
		treatmentRepo.Close()
		apptRepo.Close()
		backend.Close()
		return nil, err
	}

	clinicOpts := []clinic.Option{clinic.WithLogger(o.logger)}
	if o.aiConfig.APIKey != "" {
		narrator, err := openai.NewNarrator(o.aiConfig)
		if err != nil {
			o.logger.Warn("narrative summaries disabled", "err", err)
		} else {
			clinicOpts = append(clinicOpts, clinic.WithNarrator(narrator))
		}
	}
	clinicOpts = append(clinicOpts, o.clinicOpts...)

	service, err := clinic.NewService(apptRepo, treatmentRepo, resultRepo, clinicOpts...)
	if err != nil {
		embedder.Close()
		resultRepo.Close()
		treatmentRepo.Close()
		apptRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Assistant{
		backend:       backend,
		apptRepo:      apptRepo,
		treatmentRepo: treatmentRepo,
		resultRepo:    resultRepo,
		embedder:      embedder,
		router:        intent.NewRouter(o.classifier),
		service:       service,
		namespace:     o.namespace,
		logger:        o.logger.With("component", "assistant"),
	}, nil
}

// Route classifies msg and selects an action. Messages without a namespace
// get the assistant's default one.
func (a *Assistant) Route(msg core.Message) core.RouteDecision {
	if msg.Namespace == "" {
		msg.Namespace = a.namespace
	}
	return a.router.Route(msg)
}

// Handle routes msg and, for clinic actions, carries the action out.
// The reply is nil for actions served elsewhere (retrieval, extraction,
// general answers).
func (a *Assistant) Handle(ctx context.Context, msg core.Message) (core.RouteDecision, *clinic.Reply, error) {
	decision := a.Route(msg)
	a.logger.Debug("routed message", "intent", decision.Intent, "action", decision.Action)

	switch decision.Action {
	case core.ActionClarify, core.ActionAppointments, core.ActionTreatments, core.ActionShowResult:
		reply, err := a.service.Respond(ctx, decision)
		return decision, reply, err
	}
	return decision, nil, nil
}

// Embed runs texts through the embedding cascade.
func (a *Assistant) Embed(ctx context.Context, texts []string) (*embedding.Result, error) {
	return a.embedder.Embed(ctx, texts)
}

// Embedder returns the embedding cascade.
func (a *Assistant) Embedder() *embedding.Pipeline {
	return a.embedder
}

// Clinic returns the appointment, treatment and embryology results services.
func (a *Assistant) Clinic() *clinic.Service {
	return a.service
}

// NewIngestionPipeline creates a pipeline that embeds documents with the
// assistant's cascade and upserts them into index.
func (a *Assistant) NewIngestionPipeline(index ingestion.VectorIndex, opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	opts = append([]ingestion.Option{ingestion.WithLogger(a.logger)}, opts...)
	return ingestion.NewPipeline(a.embedder, index, opts...)
}

// Close releases the embedding providers and the clinic store.
func (a *Assistant) Close() error {
	var errs []error
	if err := a.embedder.Close(); err != nil {
		a.logger.Error("error closing embedding providers", "err", err)
		errs = append(errs, err)
	}
	if err := a.resultRepo.Close(); err != nil {
		a.logger.Error("error closing embryology repository", "err", err)
		errs = append(errs, err)
	}
	if err := a.treatmentRepo.Close(); err != nil {
		a.logger.Error("error closing treatment repository", "err", err)
		errs = append(errs, err)
	}
	if err := a.apptRepo.Close(); err != nil {
		a.logger.Error("error closing appointment repository", "err", err)
		errs = append(errs, err)
	}
	if err := a.backend.Close(); err != nil {
		a.logger.Error("error closing backend storage", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
