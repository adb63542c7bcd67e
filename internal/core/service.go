package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/JonMunkholm/personcsv/internal/config"
	"github.com/JonMunkholm/personcsv/internal/logging"
	"github.com/JonMunkholm/personcsv/internal/storage"
)

// DefaultStorageTimeout bounds a single store call when none is configured.
const DefaultStorageTimeout = 30 * time.Second

// Service provides the core business logic: validated appends to, and
// counts of, the dataset object at a fixed key.
type Service struct {
	store       storage.Store
	key         string
	limits      Limits
	conditional bool
	maxAttempts int
	timeout     time.Duration
	limiter     *AppendLimiter

	// newBackOff builds the delay schedule between conflicting attempts.
	newBackOff func() backoff.BackOff
}

// NewService creates a Service over store configured from cfg.
func NewService(store storage.Store, cfg *config.Config) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	timeout := cfg.Storage.Timeout
	if timeout <= 0 {
		timeout = DefaultStorageTimeout
	}
	attempts := cfg.Write.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	return &Service{
		store:       store,
		key:         cfg.Storage.Key,
		limits:      LimitsFromConfig(cfg.Person),
		conditional: cfg.Write.Conditional(),
		maxAttempts: attempts,
		timeout:     timeout,
		limiter:     NewAppendLimiter(cfg.Write.MaxConcurrent, cfg.Write.MaxWait),
		newBackOff:  defaultBackOff,
	}, nil
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = time.Second
	return b
}

// Key returns the object key of the dataset.
func (s *Service) Key() string { return s.key }

// Limits returns the bounds applied by Append.
func (s *Service) Limits() Limits { return s.limits }

// Conditional reports whether appends use version preconditions.
func (s *Service) Conditional() bool { return s.conditional }

// Append validates in and adds it as the last row of the dataset.
//
// Validation happens before any storage access. In conditional mode a
// version conflict re-reads the object and retries, up to the configured
// number of attempts, after which ErrConflict is returned. In overwrite
// mode the object is replaced unconditionally and concurrent appends can
// lose each other's rows.
func (s *Service) Append(ctx context.Context, in PersonInput) (AppendResult, error) {
	p, err := s.limits.Validate(in)
	if err != nil {
		return AppendResult{}, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return AppendResult{}, err
	}
	defer s.limiter.Release()

	ip, _ := ClientFromContext(ctx)
	log := logging.WithFields(ctx, "key", s.key, "client_ip", ip)

	if !s.conditional {
		res, err := s.appendOnce(ctx, p, true)
		if err != nil {
			return AppendResult{}, err
		}
		res.Attempts = 1
		log.Info("record appended", "count", res.Count, "mode", config.WriteModeOverwrite)
		return res, nil
	}

	attempts := 0
	res, err := backoff.Retry(ctx, func() (AppendResult, error) {
		attempts++
		res, err := s.appendOnce(ctx, p, false)
		if errors.Is(err, storage.ErrConflict) {
			log.Debug("version conflict, retrying", "attempt", attempts)
			return AppendResult{}, err
		}
		if err != nil {
			return AppendResult{}, backoff.Permanent(err)
		}
		return res, nil
	},
		backoff.WithBackOff(s.newBackOff()),
		backoff.WithMaxTries(uint(s.maxAttempts)),
	)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			log.Warn("append abandoned after version conflicts", "attempts", attempts)
			return AppendResult{}, fmt.Errorf("%w: gave up after %d attempts", ErrConflict, attempts)
		}
		return AppendResult{}, err
	}

	res.Attempts = attempts
	log.Info("record appended", "count", res.Count, "attempts", attempts, "version", res.Version)
	return res, nil
}

// appendOnce runs one fetch, append and write cycle.
func (s *Service) appendOnce(ctx context.Context, p Person, overwrite bool) (AppendResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	existing, version, err := s.fetch(ctx)
	if err != nil {
		return AppendResult{}, err
	}

	next, count, err := AppendRecord(existing, p)
	if err != nil {
		return AppendResult{}, err
	}

	cond := storage.IfVersion(version)
	if overwrite {
		cond = storage.Overwrite()
	}

	newVersion, err := s.store.Put(ctx, s.key, next, cond)
	if errors.Is(err, storage.ErrConflict) {
		return AppendResult{}, err
	}
	if err != nil {
		return AppendResult{}, fmt.Errorf("%w: write %s: %w", ErrStorage, s.key, err)
	}

	return AppendResult{Record: p, Count: count, Version: newVersion}, nil
}

// Count returns the number of stored records; 0 when nothing was written.
func (s *Service) Count(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, _, err := s.fetch(ctx)
	if err != nil {
		return 0, err
	}
	n, err := CountRows(data)
	if err != nil {
		return 0, err
	}

	logging.FromContext(ctx).Debug("rows counted", "key", s.key, "count", n)
	return n, nil
}

// Export returns the stored CSV text, or a header-only document when the
// dataset has never been written.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, _, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return Dataset{}.Encode(), nil
	}
	return data, nil
}

// fetch reads the dataset object. A missing object is returned as nil data
// with an empty version, which IfVersion treats as "must not exist".
func (s *Service) fetch(ctx context.Context) ([]byte, string, error) {
	obj, err := s.store.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("%w: read %s: %w", ErrStorage, s.key, err)
	}
	return obj.Data, obj.Version, nil
}

// WaitForAppends blocks until in-flight appends finish or ctx ends.
func (s *Service) WaitForAppends(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// ActiveAppends returns the number of appends currently running.
func (s *Service) ActiveAppends() int {
	return s.limiter.Active()
}
