package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/grokmeetu/meetu-backend/internal/logger"
	"github.com/grokmeetu/meetu-backend/internal/recerr"
	"github.com/grokmeetu/meetu-backend/internal/repos"
	"github.com/grokmeetu/meetu-backend/internal/types"
)

// RecommendationService is the per-user recommendation cache with CRUD
// semantics. Operations on different users never block each other; create,
// update and delete on the same user are mutually exclusive.
type RecommendationService interface {
	Create(ctx context.Context, userID string, filters *types.RecommendationFilter, thresholds *types.Thresholds) (*types.RecommendationList, error)
	Read(ctx context.Context, userID string, filters *types.RecommendationFilter) (*types.RecommendationList, error)
	Update(ctx context.Context, userID string, filters *types.RecommendationFilter, thresholds *types.Thresholds) (*types.RecommendationList, error)
	Delete(ctx context.Context, userID string) error
	BatchCreate(ctx context.Context, userIDs []string, filters *types.RecommendationFilter, thresholds *types.Thresholds) []BatchResult
}

// BatchResult is one user's independent outcome of a batch create.
type BatchResult struct {
	UserID string
	List   *types.RecommendationList
	Err    error
}

type recommendationService struct {
	log          *logger.Logger
	userRepo     repos.UserRepo
	chatroomRepo repos.ChatroomRepo
	candidates   CandidateGenerator
	evaluator    FeatureEvaluator
	models       ModelManager
	notifier     *ModelNotifier
	defaults     types.Thresholds

	mu      sync.RWMutex
	entries map[string]*types.RecommendationList
	locks   keyedMutex
}

func NewRecommendationService(
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	chatroomRepo repos.ChatroomRepo,
	candidates CandidateGenerator,
	evaluator FeatureEvaluator,
	models ModelManager,
	notifier *ModelNotifier,
	defaults types.Thresholds,
) RecommendationService {
	return &recommendationService{
		log:          baseLog.With("service", "RecommendationService"),
		userRepo:     userRepo,
		chatroomRepo: chatroomRepo,
		candidates:   candidates,
		evaluator:    evaluator,
		models:       models,
		notifier:     notifier,
		defaults:     defaults,
		entries:      make(map[string]*types.RecommendationList),
	}
}

func (s *recommendationService) Create(ctx context.Context, userID string, filters *types.RecommendationFilter, thresholds *types.Thresholds) (*types.RecommendationList, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	if s.get(userID) != nil {
		return nil, fmt.Errorf("%w for user %s", recerr.ErrAlreadyExists, userID)
	}

	list, err := s.generate(ctx, userID, filters, thresholds)
	if err != nil {
		return nil, err
	}

	s.put(userID, list)
	s.log.Info("Recommendations created", "user_id", userID, "count", len(list.Items))
	return list, nil
}

func (s *recommendationService) Read(ctx context.Context, userID string, filters *types.RecommendationFilter) (*types.RecommendationList, error) {
	entry := s.get(userID)
	if entry == nil {
		return nil, fmt.Errorf("%w for user %s", recerr.ErrNotFound, userID)
	}
	if filters == nil {
		return entry, nil
	}

	// Cheap post-hoc filters over the already-computed list; scores are
	// never recomputed on a read.
	items := make([]types.RecommendationItem, 0, len(entry.Items))
	items = append(items, entry.Items...)

	if filters.MinScore != nil {
		items = filterItems(items, func(it types.RecommendationItem) bool {
			return it.PredictedScore >= *filters.MinScore
		})
	}

	if len(filters.Topics) > 0 || filters.MinVibeScore != nil {
		rooms, err := s.lookupChatrooms(ctx, items)
		if err != nil {
			return nil, err
		}
		items = filterItems(items, func(it types.RecommendationItem) bool {
			room := rooms[it.ChatroomID]
			if room == nil {
				return false
			}
			if len(filters.Topics) > 0 && !topicsOverlap(filters.Topics, room.Topics) {
				return false
			}
			if filters.MinVibeScore != nil && room.VibeScore < *filters.MinVibeScore {
				return false
			}
			return true
		})
	}

	if filters.TopK != nil && *filters.TopK >= 0 && len(items) > *filters.TopK {
		items = items[:*filters.TopK]
	}

	filtered := *entry
	filtered.Items = items
	filtered.Filters = filters
	return &filtered, nil
}

func (s *recommendationService) Update(ctx context.Context, userID string, filters *types.RecommendationFilter, thresholds *types.Thresholds) (*types.RecommendationList, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	if s.get(userID) == nil {
		return nil, fmt.Errorf("%w for user %s", recerr.ErrNotFound, userID)
	}

	list, err := s.generate(ctx, userID, filters, thresholds)
	if err != nil {
		return nil, err
	}

	s.put(userID, list)
	s.log.Info("Recommendations regenerated", "user_id", userID, "count", len(list.Items))
	return list, nil
}

func (s *recommendationService) Delete(ctx context.Context, userID string) error {
	unlock := s.locks.Lock(userID)
	defer unlock()

	if s.get(userID) == nil {
		return fmt.Errorf("%w for user %s", recerr.ErrNotFound, userID)
	}

	s.mu.Lock()
	delete(s.entries, userID)
	s.mu.Unlock()

	s.notifier.CacheInvalidated(userID)
	s.log.Info("Recommendations cleared", "user_id", userID)
	return nil
}

func (s *recommendationService) BatchCreate(ctx context.Context, userIDs []string, filters *types.RecommendationFilter, thresholds *types.Thresholds) []BatchResult {
	results := make([]BatchResult, len(userIDs))

	g := new(errgroup.Group)
	g.SetLimit(4)
	for i, userID := range userIDs {
		g.Go(func() error {
			list, err := s.Create(ctx, userID, filters, thresholds)
			results[i] = BatchResult{UserID: userID, List: list, Err: err}
			// One user's failure must not abort the others.
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// generate runs the full pipeline: candidates, evaluation, threshold gates,
// ranking. It writes nothing; callers store the result only after it
// completed, so a cancelled generation leaves the cache untouched.
func (s *recommendationService) generate(ctx context.Context, userID string, filters *types.RecommendationFilter, thresholds *types.Thresholds) (*types.RecommendationList, error) {
	user, err := s.userRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch user %s: %w", userID, err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %s", recerr.ErrUserNotFound, userID)
	}

	th := s.defaults
	if thresholds != nil {
		th = *thresholds
	}

	candidates, err := s.candidates.Candidates(ctx, userID, filters)
	if err != nil {
		return nil, err
	}

	outcomes := s.evaluator.EvaluateAll(ctx, user, candidates)
	items := Rank(outcomes, th, s.log)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &types.RecommendationList{
		UserID:       userID,
		Items:        items,
		Filters:      filters,
		Thresholds:   th,
		ModelVersion: s.models.LoadedVersion(),
		GeneratedAt:  time.Now(),
	}, nil
}

func (s *recommendationService) lookupChatrooms(ctx context.Context, items []types.RecommendationItem) (map[string]*types.Chatroom, error) {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ChatroomID)
	}
	rooms, err := s.chatroomRepo.GetByChatroomIDs(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("lookup chatrooms: %w", err)
	}
	byID := make(map[string]*types.Chatroom, len(rooms))
	for _, room := range rooms {
		byID[room.ChatroomID] = room
	}
	return byID, nil
}

func (s *recommendationService) get(userID string) *types.RecommendationList {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[userID]
}

func (s *recommendationService) put(userID string, list *types.RecommendationList) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[userID] = list
}

func filterItems(items []types.RecommendationItem, keep func(types.RecommendationItem) bool) []types.RecommendationItem {
	out := items[:0:0]
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// keyedMutex hands out one mutex per key so mutations on different users
// never contend. Mutexes are retained for the process lifetime, bounded by
// the number of distinct users served.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
