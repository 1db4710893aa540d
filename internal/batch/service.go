package batch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/ewaste-management/internal"
	"github.com/frahmantamala/ewaste-management/internal/core/events"
	"github.com/frahmantamala/ewaste-management/internal/metrics"
)

const (
	DefaultMaxKeyAttempts = 10
	maxSaveAttempts       = 3
)

var (
	ErrNotFound        = errors.New("batch not found")
	ErrDuplicateKey    = errors.New("batch key already exists")
	ErrVersionConflict = errors.New("batch version conflict")
)

// Repository persists batches. Save must be a compare-and-swap on Version and
// must insert the items that have no ID yet in the same transaction.
type Repository interface {
	Create(ctx context.Context, b *Batch) error
	ExistsByKey(ctx context.Context, key string) (bool, error)
	GetByID(ctx context.Context, id int64) (*Batch, error)
	List(ctx context.Context, filter ListFilter) ([]*Batch, int64, error)
	Save(ctx context.Context, b *Batch) error
	Delete(ctx context.Context, id int64) error
}

type StatsReader interface {
	Stats(ctx context.Context, createdBy *int64) (*Stats, error)
}

type KeyGeneratorAPI interface {
	Generate(name, location string, requestDate time.Time) string
	Fallback(name string) string
}

// Authorizer gates every batch operation for an actor.
type Authorizer interface {
	CanCreateBatch(u *internal.User) bool
	CanViewBatch(u *internal.User, ownerID int64) bool
	CanListAll(u *internal.User) bool
	CanAddItems(u *internal.User) bool
	CanUpdateStatus(u *internal.User) bool
	CanSchedule(u *internal.User) bool
	CanDelete(u *internal.User) bool
	CanViewStats(u *internal.User) bool
}

type Options struct {
	MaxKeyAttempts            int
	RequireItemsForCompletion bool
}

type Service struct {
	repo      Repository
	stats     StatsReader
	keys      KeyGeneratorAPI
	authz     Authorizer
	publisher events.Publisher
	opts      Options
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, stats StatsReader, keys KeyGeneratorAPI, authz Authorizer, publisher events.Publisher, opts Options, logger *slog.Logger) *Service {
	if opts.MaxKeyAttempts <= 0 {
		opts.MaxKeyAttempts = DefaultMaxKeyAttempts
	}
	return &Service{
		repo:      repo,
		stats:     stats,
		keys:      keys,
		authz:     authz,
		publisher: publisher,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) CreateBatch(ctx context.Context, actor *internal.User, dto CreateBatchDTO) (*Batch, error) {
	if !s.authz.CanCreateBatch(actor) {
		s.logger.Warn("create batch denied", "user_id", actorID(actor))
		return nil, internal.ErrForbidden
	}

	requestDate, err := dto.Validate()
	if err != nil {
		return nil, err
	}

	key, err := s.allocateKey(ctx, dto.Name, dto.PickupLocation, requestDate)
	if err != nil {
		return nil, err
	}

	b := NewBatch(key, actor.ID, dto, requestDate)
	err = s.repo.Create(ctx, b)
	if errors.Is(err, ErrDuplicateKey) {
		// lost a race on the unique index after the existence check
		metrics.BatchKeyCollisionsTotal.Inc()
		b.BatchKey = s.fallbackKey(dto.Name)
		err = s.repo.Create(ctx, b)
	}
	if err != nil {
		if errors.Is(err, ErrDuplicateKey) {
			s.logger.Error("batch key conflict after fallback", "batch_key", b.BatchKey)
			return nil, internal.ErrBatchKeyConflict
		}
		s.logger.Error("failed to create batch", "error", err, "user_id", actor.ID)
		metrics.OperationErrorsTotal.WithLabelValues("create_batch").Inc()
		return nil, internal.NewInternalError("failed to create batch", err)
	}

	metrics.BatchesCreatedTotal.Inc()
	s.publish(ctx, events.NewBatchCreatedEvent(b.ID, b.BatchKey, b.CreatedBy))
	s.logger.Info("batch created", "batch_id", b.ID, "batch_key", b.BatchKey, "user_id", actor.ID)

	return b, nil
}

// allocateKey tries a bounded number of generated keys and then falls back to
// the timestamp form, so it never fails on collisions alone.
func (s *Service) allocateKey(ctx context.Context, name, location string, requestDate time.Time) (string, error) {
	for attempt := 1; attempt <= s.opts.MaxKeyAttempts; attempt++ {
		key := s.keys.Generate(name, location, requestDate)
		exists, err := s.repo.ExistsByKey(ctx, key)
		if err != nil {
			s.logger.Error("failed to check batch key", "error", err, "batch_key", key)
			return "", internal.NewInternalError("failed to create batch", err)
		}
		if !exists {
			return key, nil
		}
		metrics.BatchKeyCollisionsTotal.Inc()
		s.logger.Debug("batch key collision", "batch_key", key, "attempt", attempt)
	}
	return s.fallbackKey(name), nil
}

func (s *Service) fallbackKey(name string) string {
	metrics.BatchKeyFallbacksTotal.Inc()
	key := s.keys.Fallback(name)
	s.logger.Warn("using fallback batch key", "batch_key", key)
	return key
}

func (s *Service) GetBatch(ctx context.Context, actor *internal.User, id int64) (*Batch, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.authz.CanViewBatch(actor, b.CreatedBy) {
		s.logger.Warn("batch access denied", "batch_id", id, "user_id", actorID(actor))
		return nil, internal.ErrBatchNotFound
	}
	return b, nil
}

func (s *Service) ListBatches(ctx context.Context, actor *internal.User, query ListQueryDTO) (*BatchPage, error) {
	filter, err := query.Validate()
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, internal.ErrForbidden
	}
	if !s.authz.CanListAll(actor) {
		owner := actor.ID
		filter.CreatedBy = &owner
	}

	batches, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list batches", "error", err, "user_id", actor.ID)
		return nil, internal.NewInternalError("failed to list batches", err)
	}

	return &BatchPage{
		Data:       batches,
		Pagination: NewPagination(filter.Page, filter.Limit, total),
	}, nil
}

func (s *Service) AddItems(ctx context.Context, actor *internal.User, id int64, dto AddItemsDTO) (*Batch, error) {
	if !s.authz.CanAddItems(actor) {
		s.logger.Warn("add items denied", "batch_id", id, "user_id", actorID(actor))
		return nil, internal.ErrForbidden
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	items := dto.ToItems()
	b, err := s.mutate(ctx, id, func(b *Batch) error {
		return b.AddItems(actor.ID, items, s.now())
	})
	if err != nil {
		return nil, err
	}

	metrics.ItemsAddedTotal.Add(float64(len(items)))
	s.publish(ctx, events.NewBatchItemsAddedEvent(b.ID, b.BatchKey, len(items), b.ItemCount, actor.ID))
	s.logger.Info("items added to batch",
		"batch_id", b.ID,
		"items_added", len(items),
		"item_count", b.ItemCount,
		"status", b.Status,
		"user_id", actor.ID)

	return b, nil
}

func (s *Service) UpdateStatus(ctx context.Context, actor *internal.User, id int64, dto UpdateStatusDTO) (*Batch, error) {
	if !s.authz.CanUpdateStatus(actor) {
		s.logger.Warn("update status denied", "batch_id", id, "user_id", actorID(actor))
		return nil, internal.ErrForbidden
	}
	status, err := dto.Validate()
	if err != nil {
		return nil, err
	}

	var from Status
	b, err := s.mutate(ctx, id, func(b *Batch) error {
		if status == StatusCompleted && s.opts.RequireItemsForCompletion && len(b.Items) == 0 {
			return internal.ErrEmptyBatch
		}
		from = b.Status
		b.UpdateStatus(status, s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.StatusTransitionsTotal.WithLabelValues(string(status)).Inc()
	s.publish(ctx, events.NewBatchStatusChangedEvent(b.ID, b.BatchKey, string(from), string(status), actor.ID))
	s.logger.Info("batch status updated", "batch_id", b.ID, "from", from, "to", status, "user_id", actor.ID)

	return b, nil
}

func (s *Service) SchedulePickup(ctx context.Context, actor *internal.User, id int64, dto ScheduleDTO) (*Batch, error) {
	if !s.authz.CanSchedule(actor) {
		s.logger.Warn("schedule pickup denied", "batch_id", id, "user_id", actorID(actor))
		return nil, internal.ErrForbidden
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	b, err := s.mutate(ctx, id, func(b *Batch) error {
		b.Schedule(dto, s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("batch pickup scheduled", "batch_id", b.ID, "user_id", actor.ID)
	return b, nil
}

func (s *Service) DeleteBatch(ctx context.Context, actor *internal.User, id int64) error {
	if !s.authz.CanDelete(actor) {
		s.logger.Warn("delete batch denied", "batch_id", id, "user_id", actorID(actor))
		return internal.ErrForbidden
	}

	b, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return internal.ErrBatchNotFound
		}
		s.logger.Error("failed to delete batch", "error", err, "batch_id", id)
		metrics.OperationErrorsTotal.WithLabelValues("delete_batch").Inc()
		return internal.NewInternalError("failed to delete batch", err)
	}

	s.publish(ctx, events.NewBatchDeletedEvent(b.ID, b.BatchKey, actor.ID))
	s.logger.Info("batch deleted", "batch_id", id, "batch_key", b.BatchKey, "user_id", actor.ID)
	return nil
}

func (s *Service) GetStats(ctx context.Context, actor *internal.User) (*Stats, error) {
	if !s.authz.CanViewStats(actor) {
		return nil, internal.ErrForbidden
	}
	stats, err := s.stats.Stats(ctx, nil)
	if err != nil {
		s.logger.Error("failed to compute batch stats", "error", err)
		return nil, internal.NewInternalError("failed to compute batch statistics", err)
	}
	return stats, nil
}

// mutate loads the batch, applies fn and saves with optimistic concurrency,
// re-reading and re-applying fn when another writer got there first.
func (s *Service) mutate(ctx context.Context, id int64, fn func(*Batch) error) (*Batch, error) {
	for attempt := 1; attempt <= maxSaveAttempts; attempt++ {
		b, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := fn(b); err != nil {
			return nil, err
		}

		err = s.repo.Save(ctx, b)
		if err == nil {
			return b, nil
		}
		if errors.Is(err, ErrNotFound) {
			return nil, internal.ErrBatchNotFound
		}
		if !errors.Is(err, ErrVersionConflict) {
			s.logger.Error("failed to save batch", "error", err, "batch_id", id)
			metrics.OperationErrorsTotal.WithLabelValues("save_batch").Inc()
			return nil, internal.NewInternalError("failed to save batch", err)
		}
		s.logger.Debug("batch version conflict, retrying", "batch_id", id, "attempt", attempt)
	}
	s.logger.Warn("giving up on concurrent batch update", "batch_id", id)
	return nil, internal.ErrConcurrentUpdate
}

func (s *Service) load(ctx context.Context, id int64) (*Batch, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.ErrBatchNotFound
		}
		s.logger.Error("failed to load batch", "error", err, "batch_id", id)
		return nil, internal.NewInternalError("failed to load batch", err)
	}
	return b, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}

func actorID(u *internal.User) int64 {
	if u == nil {
		return 0
	}
	return u.ID
}
