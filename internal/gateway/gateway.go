package gateway

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"miru/internal/metrics"
	"miru/internal/mirror"
	"miru/internal/models"
	"miru/internal/remote"

	"github.com/rs/zerolog"
)

// Source tells which store served an operation.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

// RejectPolicy controls what a remote validation rejection does.
type RejectPolicy string

const (
	// RejectFallback treats a rejection like any other remote failure.
	RejectFallback RejectPolicy = "fallback"
	// RejectSurface returns the rejection to the caller and leaves the mirror untouched.
	RejectSurface RejectPolicy = "surface"
)

// ParseRejectPolicy accepts "fallback", "surface" or "" (fallback).
func ParseRejectPolicy(s string) (RejectPolicy, error) {
	switch RejectPolicy(s) {
	case "", RejectFallback:
		return RejectFallback, nil
	case RejectSurface:
		return RejectSurface, nil
	default:
		return "", fmt.Errorf("unknown reject policy %q", s)
	}
}

// ErrNotFound is returned when neither store can act on the id.
var ErrNotFound = errors.New("booking not found")

// RejectedError is returned under RejectSurface when the remote store refuses the input.
type RejectedError struct {
	Op  string
	Err *remote.RejectedError
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s rejected by remote store: %s", e.Op, e.Err.Message)
}

func (e *RejectedError) Unwrap() error { return e.Err }

// RemoteStore is the authoritative booking store.
type RemoteStore interface {
	List(ctx context.Context) ([]models.Booking, error)
	Create(ctx context.Context, f models.Fields) (models.Booking, error)
	Update(ctx context.Context, id string, f models.Fields) (models.Booking, error)
	Delete(ctx context.Context, id string) error
}

// Gateway tries the remote store first and falls back to the local mirror.
// There is no retry: one failed remote attempt triggers the fallback.
type Gateway struct {
	remote RemoteStore
	local  mirror.Store
	policy RejectPolicy
	logger *zerolog.Logger
	now    func() time.Time

	mu sync.Mutex
}

type Option func(*Gateway)

func WithRejectPolicy(p RejectPolicy) Option {
	return func(g *Gateway) { g.policy = p }
}

// WithClock overrides the clock used for local ids.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

func New(remoteStore RemoteStore, local mirror.Store, logger *zerolog.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		remote: remoteStore,
		local:  local,
		policy: RejectFallback,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// List returns the remote set and refreshes the mirror with it, or the mirror when the remote fails.
func (g *Gateway) List(ctx context.Context) ([]models.Booking, Source, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	list, err := g.remote.List(ctx)
	if err == nil {
		if werr := g.local.Write(ctx, list); werr != nil {
			g.logger.Error().Err(werr).Str("op", "list").Msg("failed to refresh local mirror")
		}
		metrics.IncGatewayOp("list", string(SourceRemote))
		return list, SourceRemote, nil
	}

	g.fallback("list", err)
	local, err := g.local.Read(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("read local mirror: %w", err)
	}
	metrics.IncGatewayOp("list", string(SourceLocal))
	return local, SourceLocal, nil
}

// Find looks the booking up in the current list.
func (g *Gateway) Find(ctx context.Context, id string) (models.Booking, Source, error) {
	list, src, err := g.List(ctx)
	if err != nil {
		return models.Booking{}, "", err
	}
	idx := models.FindByID(list, id)
	if idx < 0 {
		return models.Booking{}, src, ErrNotFound
	}
	return list[idx], src, nil
}

func (g *Gateway) Create(ctx context.Context, f models.Fields) (models.Booking, Source, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	created, err := g.remote.Create(ctx, f)
	if err == nil {
		g.syncMirror(ctx, "create", func(list []models.Booking) []models.Booking {
			return append(list, created)
		})
		metrics.IncGatewayOp("create", string(SourceRemote))
		return created, SourceRemote, nil
	}
	if serr := g.surface("create", err); serr != nil {
		return models.Booking{}, "", serr
	}

	g.fallback("create", err)
	list, err := g.local.Read(ctx)
	if err != nil {
		return models.Booking{}, "", fmt.Errorf("read local mirror: %w", err)
	}
	b := models.Booking{ID: g.localID(list), Fields: f}
	if err := g.local.Write(ctx, append(list, b)); err != nil {
		return models.Booking{}, "", fmt.Errorf("write local mirror: %w", err)
	}
	metrics.IncGatewayOp("create", string(SourceLocal))
	return b, SourceLocal, nil
}

// Update replaces all five editable fields of the booking with id.
func (g *Gateway) Update(ctx context.Context, id string, f models.Fields) (models.Booking, Source, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	updated, err := g.remote.Update(ctx, id, f)
	if err == nil {
		g.syncMirror(ctx, "update", func(list []models.Booking) []models.Booking {
			if idx := models.FindByID(list, updated.ID); idx >= 0 {
				list[idx] = updated
				return list
			}
			return append(list, updated)
		})
		metrics.IncGatewayOp("update", string(SourceRemote))
		return updated, SourceRemote, nil
	}
	if serr := g.surface("update", err); serr != nil {
		return models.Booking{}, "", serr
	}

	list, idx, err := g.localRecord(ctx, "update", id, err)
	if err != nil {
		return models.Booking{}, "", err
	}
	list[idx] = list[idx].WithFields(f)
	if err := g.local.Write(ctx, list); err != nil {
		return models.Booking{}, "", fmt.Errorf("write local mirror: %w", err)
	}
	metrics.IncGatewayOp("update", string(SourceLocal))
	return list[idx], SourceLocal, nil
}

func (g *Gateway) Delete(ctx context.Context, id string) (Source, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	err := g.remote.Delete(ctx, id)
	if err == nil {
		g.syncMirror(ctx, "delete", func(list []models.Booking) []models.Booking {
			return without(list, id)
		})
		metrics.IncGatewayOp("delete", string(SourceRemote))
		return SourceRemote, nil
	}
	if serr := g.surface("delete", err); serr != nil {
		return "", serr
	}

	list, _, err := g.localRecord(ctx, "delete", id, err)
	if err != nil {
		return "", err
	}
	if err := g.local.Write(ctx, without(list, id)); err != nil {
		return "", fmt.Errorf("write local mirror: %w", err)
	}
	metrics.IncGatewayOp("delete", string(SourceLocal))
	return SourceLocal, nil
}

// localRecord reads the mirror for a fallback on an existing id.
// A remote not-found is only overridden when the id is a local-only record.
func (g *Gateway) localRecord(ctx context.Context, op, id string, remoteErr error) ([]models.Booking, int, error) {
	list, err := g.local.Read(ctx)
	if err != nil {
		return nil, -1, fmt.Errorf("read local mirror: %w", err)
	}
	idx := models.FindByID(list, id)
	if idx < 0 {
		if remote.Classify(remoteErr) != remote.OutcomeNotFound {
			g.fallback(op, remoteErr)
		}
		return nil, -1, ErrNotFound
	}
	g.fallback(op, remoteErr)
	return list, idx, nil
}

// surface returns a non-nil error when the failure must not fall back.
func (g *Gateway) surface(op string, err error) error {
	var rej *remote.RejectedError
	if g.policy == RejectSurface && errors.As(err, &rej) {
		g.logger.Warn().Err(err).Str("op", op).Msg("remote rejected input")
		return &RejectedError{Op: op, Err: rej}
	}
	return nil
}

func (g *Gateway) fallback(op string, err error) {
	reason := remote.Classify(err).String()
	metrics.IncGatewayFallback(op, reason)
	g.logger.Warn().Err(err).Str("op", op).Str("reason", reason).Msg("remote store failed, using local mirror")
}

// syncMirror applies a successful remote change to the mirror; failures are only logged.
func (g *Gateway) syncMirror(ctx context.Context, op string, apply func([]models.Booking) []models.Booking) {
	list, err := g.local.Read(ctx)
	if err != nil {
		g.logger.Error().Err(err).Str("op", op).Msg("failed to read local mirror")
		return
	}
	if err := g.local.Write(ctx, apply(list)); err != nil {
		g.logger.Error().Err(err).Str("op", op).Msg("failed to update local mirror")
	}
}

// localID derives an id from the clock, bumped until unique within the mirror.
func (g *Gateway) localID(list []models.Booking) string {
	n := g.now().UnixNano()
	for {
		id := strconv.FormatInt(n, 10)
		if models.FindByID(list, id) < 0 {
			return id
		}
		n++
	}
}

func without(list []models.Booking, id string) []models.Booking {
	out := make([]models.Booking, 0, len(list))
	for _, b := range list {
		if b.ID != id {
			out = append(out, b)
		}
	}
	return out
}
