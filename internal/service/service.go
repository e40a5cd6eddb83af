package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"consignhub/backend/internal/aging"
	"consignhub/backend/internal/cache"
	"consignhub/backend/internal/domain"
	"consignhub/backend/internal/lock"
	"consignhub/backend/internal/store"
	"consignhub/backend/internal/xid"
)

var (
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrLocked          = errors.New("resource is busy, retry shortly")
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Options struct {
	MetricsTTL  time.Duration
	LockTTL     time.Duration
	PhoneRegion string
	CodeSeed    uint64
	Now         func() time.Time
}

type Service struct {
	repo        store.Repository
	metrics     cache.MetricsCache
	locker      lock.Locker
	aging       *aging.Engine
	codes       *CodeGenerator
	metricsTTL  time.Duration
	lockTTL     time.Duration
	phoneRegion string
	now         func() time.Time
	log         *logrus.Entry

	// cacheMu orders invalidations against cache writes. generation counts
	// invalidations so a reader that computed before one never stores.
	cacheMu    sync.Mutex
	generation uint64
}

func New(repo store.Repository, metricsCache cache.MetricsCache, locker lock.Locker, opts Options) *Service {
	if metricsCache == nil {
		metricsCache = cache.NoopMetricsCache{}
	}
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	if opts.MetricsTTL <= 0 {
		opts.MetricsTTL = time.Minute
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 10 * time.Second
	}
	if opts.PhoneRegion == "" {
		opts.PhoneRegion = "US"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{
		repo:        repo,
		metrics:     metricsCache,
		locker:      locker,
		aging:       aging.NewEngine(nil),
		codes:       NewCodeGenerator(opts.CodeSeed),
		metricsTTL:  opts.MetricsTTL,
		lockTTL:     opts.LockTTL,
		phoneRegion: strings.ToUpper(opts.PhoneRegion),
		now:         func() time.Time { return opts.Now().UTC() },
		log:         logrus.WithField("component", "service"),
	}
}

func requireActor(ctx context.Context) (domain.Actor, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.OrganizationID == "" {
		return domain.Actor{}, ErrUnauthenticated
	}
	return actor, nil
}

func requireAdmin(ctx context.Context) (domain.Actor, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return domain.Actor{}, err
	}
	if actor.Role != domain.RoleAdmin {
		return domain.Actor{}, fmt.Errorf("%w: admin role required", ErrForbidden)
	}
	return actor, nil
}

// withLock runs fn while holding key. A lock held elsewhere surfaces as ErrLocked.
func (s *Service) withLock(ctx context.Context, key string, fn func() error) error {
	held, err := s.locker.Obtain(ctx, key, s.lockTTL)
	if errors.Is(err, lock.ErrNotObtained) {
		return ErrLocked
	}
	if err != nil {
		return fmt.Errorf("obtain lock %s: %w", key, err)
	}
	defer func() {
		if err := held.Release(context.WithoutCancel(ctx)); err != nil {
			s.log.WithError(err).WithField("lock", key).Warn("failed to release lock")
		}
	}()
	return fn()
}

// invalidate drops cached metrics for the given consignors and the shop total.
// invalidate must run after the repository write it follows.
func (s *Service) invalidate(ctx context.Context, orgID string, consignorIDs ...string) {
	keys := make([]string, 0, len(consignorIDs))
	for _, id := range consignorIDs {
		keys = append(keys, cache.ConsignorKey(orgID, id))
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.generation++
	if len(keys) == 0 {
		return
	}
	if err := s.metrics.Delete(ctx, keys...); err != nil {
		s.log.WithError(err).WithField("organization_id", orgID).Warn("failed to invalidate metrics cache")
	}
}

func (s *Service) logAudit(ctx context.Context, orgID string, action string, entityType string, entityID string, detail string) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = domain.Actor{Username: "system", Role: "system"}
	}

	if err := s.repo.CreateAuditLog(ctx, domain.AuditLog{
		ID:             xid.New("audit"),
		OrganizationID: orgID,
		ActorUsername:  actor.Username,
		ActorRole:      actor.Role,
		Action:         action,
		EntityType:     entityType,
		EntityID:       entityID,
		Detail:         detail,
		CreatedAt:      s.now(),
	}); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"action": action,
			"entity": entityType + "/" + entityID,
		}).Warn("failed to write audit log")
	}
}

func (s *Service) GetOrganization(ctx context.Context) (domain.Organization, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return domain.Organization{}, err
	}
	org, err := s.repo.GetOrganization(ctx, actor.OrganizationID)
	if err != nil {
		return domain.Organization{}, err
	}
	return *org, nil
}

func (s *Service) UpdateOrganization(ctx context.Context, req domain.OrganizationUpdateRequest) (domain.Organization, error) {
	actor, err := requireAdmin(ctx)
	if err != nil {
		return domain.Organization{}, err
	}
	if err := validateStruct(req); err != nil {
		return domain.Organization{}, err
	}

	org, err := s.repo.GetOrganization(ctx, actor.OrganizationID)
	if err != nil {
		return domain.Organization{}, err
	}
	updated := *org
	if req.Name != nil {
		updated.Name = strings.TrimSpace(*req.Name)
	}
	if req.DefaultSplitPercent != nil {
		if err := validateSplit(*req.DefaultSplitPercent); err != nil {
			return domain.Organization{}, err
		}
		updated.DefaultSplitPercent = *req.DefaultSplitPercent
	}
	if req.Currency != nil {
		updated.Currency = strings.ToUpper(strings.TrimSpace(*req.Currency))
	}

	saved, err := s.repo.UpdateOrganization(ctx, updated)
	if err != nil {
		return domain.Organization{}, err
	}
	s.logAudit(ctx, saved.ID, "organization_update", "organization", saved.ID,
		fmt.Sprintf("name=%s,split=%s,currency=%s", saved.Name, saved.DefaultSplitPercent.String(), saved.Currency))
	return *saved, nil
}

// ListAuditLogs returns one UTC day of audit entries, the last 24 hours when
// date is empty.
func (s *Service) ListAuditLogs(ctx context.Context, date string, limit int) ([]domain.AuditLog, error) {
	actor, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 100
	}

	var from time.Time
	if strings.TrimSpace(date) == "" {
		from = s.now().Add(-24 * time.Hour)
	} else {
		parsed, err := time.Parse(dateLayout, date)
		if err != nil {
			return nil, invalidInput("date must be YYYY-MM-DD")
		}
		from = parsed.UTC()
	}
	to := from.Add(24 * time.Hour)

	return s.repo.ListAuditLogs(ctx, actor.OrganizationID, from, to, limit)
}

const dateLayout = "2006-01-02"

func clampLimit(limit int, fallback int, max int) int {
	if limit < 1 {
		return fallback
	}
	if limit > max {
		return max
	}
	return limit
}
