package metadata

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/goliatone/go-metadata-cache/cache"
	"github.com/puzpuzpuz/xsync/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ModelIdentity names a model, e.g. "github.com/acme/shop/models.Order".
type ModelIdentity string

// ComputeFunc produces the value of one kind for a model on a cache miss.
type ComputeFunc func(ctx context.Context) (any, error)

// Store caches metadata rows keyed by model identity.
type Store interface {
	// Read returns the full row for model. Backend failures read as a miss.
	Read(ctx context.Context, model ModelIdentity) (Row, bool)
	// ReadKind returns a single kind of the row for model.
	ReadKind(ctx context.Context, model ModelIdentity, kind Kind) (any, bool)
	// Write replaces the row for model.
	Write(ctx context.Context, model ModelIdentity, row Row) error
	// Reset drops every cached row, locally and in the backend.
	Reset(ctx context.Context) error
	// GetOrCompute returns the cached value of kind, computing and storing it on a miss.
	GetOrCompute(ctx context.Context, model ModelIdentity, kind Kind, fn ComputeFunc) (any, error)
}

// Backend is the shared storage behind a MetadataStore. Values are encoded rows.
type Backend interface {
	Get(ctx context.Context, model ModelIdentity) ([]byte, bool, error)
	Set(ctx context.Context, model ModelIdentity, data []byte) error
	Clear(ctx context.Context) error
	Close() error
}

var _ Store = (*MetadataStore)(nil)

// MetadataStore keeps a process-local mirror of rows in front of an optional
// Backend. The mirror is read first; backend hits populate it unless a Reset
// happened while the backend call was in flight.
type MetadataStore struct {
	name       string
	local      *xsync.MapOf[ModelIdentity, Row]
	generation atomic.Uint64
	backend    Backend
	serializer Serializer
	logger     *zap.Logger
	tracer     trace.Tracer
}

// StoreOption configures a MetadataStore.
type StoreOption func(*storeConfig)

type storeConfig struct {
	name          string
	logger        *zap.Logger
	serializer    Serializer
	keySerializer cache.KeySerializer
}

// WithLogger sets the logger used for degraded backend calls.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(c *storeConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSerializer selects the row encoding used with the backend.
func WithSerializer(s Serializer) StoreOption {
	return func(c *storeConfig) {
		if s != nil {
			c.serializer = s
		}
	}
}

// WithKeySerializer overrides how backend keys are built from prefix and model.
func WithKeySerializer(ks cache.KeySerializer) StoreOption {
	return func(c *storeConfig) {
		if ks != nil {
			c.keySerializer = ks
		}
	}
}

// WithName sets the store label used in logs and metrics.
func WithName(name string) StoreOption {
	return func(c *storeConfig) {
		if name != "" {
			c.name = name
		}
	}
}

func newStoreConfig(name string, opts []StoreOption) storeConfig {
	cfg := storeConfig{
		name:          name,
		logger:        zap.NewNop(),
		serializer:    MsgpackSerializer(),
		keySerializer: cache.NewDefaultKeySerializer(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// New creates a store over backend. A nil backend yields a process-local store.
func New(backend Backend, opts ...StoreOption) *MetadataStore {
	return newStore(backend, newStoreConfig("custom", opts))
}

func newStore(backend Backend, cfg storeConfig) *MetadataStore {
	return &MetadataStore{
		name:       cfg.name,
		local:      xsync.NewMapOf[ModelIdentity, Row](),
		backend:    backend,
		serializer: cfg.serializer,
		logger:     cfg.logger.With(zap.String("store", cfg.name)),
		tracer:     otel.Tracer("github.com/goliatone/go-metadata-cache/metadata"),
	}
}

// Name returns the store label.
func (s *MetadataStore) Name() string { return s.name }

// Serializer returns the row encoding used with the backend.
func (s *MetadataStore) Serializer() Serializer { return s.serializer }

func (s *MetadataStore) Read(ctx context.Context, model ModelIdentity) (Row, bool) {
	if row, ok := s.local.Load(model); ok {
		localHitsTotal.WithLabelValues(s.name).Inc()
		return row, true
	}
	if s.backend == nil {
		missesTotal.WithLabelValues(s.name).Inc()
		return nil, false
	}

	gen := s.generation.Load()
	row, ok := s.readRemote(ctx, model)
	if !ok {
		missesTotal.WithLabelValues(s.name).Inc()
		return nil, false
	}
	remoteHitsTotal.WithLabelValues(s.name).Inc()

	// Reset bumps the generation before clearing, so a row fetched before a
	// reset is handed to this caller but never mirrored.
	actual, stored := s.local.Compute(model, func(current Row, loaded bool) (Row, bool) {
		if loaded {
			return current, false
		}
		if s.generation.Load() != gen {
			return nil, true
		}
		return row, false
	})
	if !stored {
		return row, true
	}
	return actual, true
}

func (s *MetadataStore) ReadKind(ctx context.Context, model ModelIdentity, kind Kind) (any, bool) {
	row, ok := s.Read(ctx, model)
	if !ok {
		return nil, false
	}
	return row.Get(kind)
}

func (s *MetadataStore) Write(ctx context.Context, model ModelIdentity, row Row) error {
	row, err := row.canonical()
	if err != nil {
		return &cache.SerializationError{Key: string(model), Op: "encode", Err: err}
	}
	data, err := s.encode(model, row)
	if err != nil {
		return err
	}
	s.local.Store(model, row)
	return s.writeRemote(ctx, model, data)
}

func (s *MetadataStore) Reset(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "metadata.Reset")
	defer span.End()

	s.generation.Add(1)
	s.local.Clear()
	if s.backend == nil {
		return nil
	}
	if err := s.backend.Clear(ctx); err != nil {
		remoteErrorsTotal.WithLabelValues(s.name, "clear").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "clear failed")
		s.logger.Error("metadata reset failed", zap.Error(err))
		return err
	}
	return nil
}

func (s *MetadataStore) GetOrCompute(ctx context.Context, model ModelIdentity, kind Kind, fn ComputeFunc) (any, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}
	ctx, span := s.tracer.Start(ctx, "metadata.GetOrCompute", trace.WithAttributes(
		attribute.String("model", string(model)),
		attribute.String("kind", kind.String()),
	))
	defer span.End()

	if v, ok := s.ReadKind(ctx, model, kind); ok {
		span.SetAttributes(attribute.Bool("cache", true))
		return v, nil
	}
	span.SetAttributes(attribute.Bool("cache", false))

	computesTotal.WithLabelValues(s.name, kind.String()).Inc()
	value, err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "compute failed")
		return nil, err
	}

	value, err = kind.canonicalize(value)
	if err != nil {
		err = &cache.SerializationError{Key: string(model), Op: "encode", Err: err}
		span.RecordError(err)
		return nil, err
	}

	merged, _ := s.local.Compute(model, func(current Row, _ bool) (Row, bool) {
		return current.With(kind, value), false
	})

	if s.backend != nil {
		data, err := s.encode(model, merged)
		if err != nil {
			s.logger.Warn("metadata encode failed", zap.String("model", string(model)), zap.Error(err))
			return value, nil
		}
		_ = s.writeRemote(ctx, model, data)
	}
	return value, nil
}

// Close releases the backend.
func (s *MetadataStore) Close() error {
	if s.backend == nil {
		return nil
	}
	return s.backend.Close()
}

func (s *MetadataStore) encode(model ModelIdentity, row Row) ([]byte, error) {
	if s.backend == nil {
		return nil, nil
	}
	data, err := s.serializer.EncodeRow(row)
	if err != nil {
		return nil, &cache.SerializationError{Key: string(model), Op: "encode", Err: err}
	}
	return data, nil
}

func (s *MetadataStore) readRemote(ctx context.Context, model ModelIdentity) (Row, bool) {
	ctx, span := s.tracer.Start(ctx, "metadata.remoteRead", trace.WithAttributes(
		attribute.String("model", string(model)),
	))
	defer span.End()

	data, found, err := s.backend.Get(ctx, model)
	if err != nil {
		remoteErrorsTotal.WithLabelValues(s.name, "read").Inc()
		span.RecordError(err)
		s.logger.Warn("metadata read degraded to miss",
			zap.String("model", string(model)),
			zap.String("op", "read"),
			zap.Error(err),
		)
		return nil, false
	}
	if !found {
		return nil, false
	}

	row, err := s.serializer.DecodeRow(data)
	if err != nil {
		remoteErrorsTotal.WithLabelValues(s.name, "decode").Inc()
		span.RecordError(err)
		s.logger.Warn("metadata entry undecodable",
			zap.String("model", string(model)),
			zap.String("op", "decode"),
			zap.Error(err),
		)
		return nil, false
	}
	return row, true
}

func (s *MetadataStore) writeRemote(ctx context.Context, model ModelIdentity, data []byte) error {
	if s.backend == nil {
		return nil
	}
	ctx, span := s.tracer.Start(ctx, "metadata.remoteWrite", trace.WithAttributes(
		attribute.String("model", string(model)),
	))
	defer span.End()

	err := s.backend.Set(ctx, model, data)
	if err == nil {
		return nil
	}
	remoteErrorsTotal.WithLabelValues(s.name, "write").Inc()
	span.RecordError(err)
	s.logger.Warn("metadata write not persisted",
		zap.String("model", string(model)),
		zap.String("op", "write"),
		zap.Error(err),
	)
	if cache.IsTimeout(err) {
		return nil
	}
	return err
}
