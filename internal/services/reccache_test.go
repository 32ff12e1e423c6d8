package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"gorm.io/datatypes"

	"github.com/grokmeetu/meetu-backend/internal/recerr"
	"github.com/grokmeetu/meetu-backend/internal/types"
)

// cacheFixture wires a RecommendationService over in-memory repos and a fixed
// fake predictor. U1 has partial credit so the default thresholds keep them;
// C2's topics share nothing with U1's interests and get gated out.
func cacheFixture(t *testing.T) (RecommendationService, *fakeModelManager) {
	t.Helper()

	users := &fakeUserRepo{users: map[string]*types.User{
		"U1": {UserID: "U1", Interests: datatypes.NewJSONSlice([]string{"music", "sports"}), LevelOfPressure: 2, PlatformCreditScore: 68},
		"U2": {UserID: "U2", Interests: datatypes.NewJSONSlice([]string{"music"}), LevelOfPressure: 4, PlatformCreditScore: 68},
	}}
	rooms := &fakeChatroomRepo{rooms: []*types.Chatroom{
		{ChatroomID: "C1", Name: "Music Lovers", Topics: datatypes.NewJSONSlice([]string{"music", "concerts"}), VibeScore: 4},
		{ChatroomID: "C2", Name: "Art Club", Topics: datatypes.NewJSONSlice([]string{"art", "relax"}), VibeScore: 5},
		{ChatroomID: "C3", Name: "Sports Fans", Topics: datatypes.NewJSONSlice([]string{"sports"}), VibeScore: 4},
	}}
	interactions := &fakeInteractionRepo{}
	models := &fakeModelManager{
		version: "T1",
		scores:  map[string]float64{"C1": 4.2, "C2": 4.8, "C3": 3.5},
	}

	log := testLogger(t)
	gen := NewCandidateGenerator(log, users, rooms, interactions)
	eval := NewFeatureEvaluator(log, models)
	svc := NewRecommendationService(log, users, rooms, gen, eval, models, nil, types.DefaultThresholds())
	return svc, models
}

func itemIDs(list *types.RecommendationList) []string {
	ids := make([]string, 0, len(list.Items))
	for _, it := range list.Items {
		ids = append(ids, it.ChatroomID)
	}
	return ids
}

func TestCreateThenCreateConflicts(t *testing.T) {
	svc, _ := cacheFixture(t)
	ctx := context.Background()

	list, err := svc.Create(ctx, "U1", nil, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	ids := itemIDs(list)
	if len(ids) != 2 || ids[0] != "C1" || ids[1] != "C3" {
		t.Fatalf("items=%v, want [C1 C3] (C2 gated on motivation, sorted by score)", ids)
	}
	if list.ModelVersion != "T1" {
		t.Fatalf("ModelVersion=%q, want T1", list.ModelVersion)
	}

	if _, err := svc.Create(ctx, "U1", nil, nil); !errors.Is(err, recerr.ErrAlreadyExists) {
		t.Fatalf("second Create err=%v, want ErrAlreadyExists", err)
	}
}

func TestCreateUnknownUser(t *testing.T) {
	svc, _ := cacheFixture(t)

	_, err := svc.Create(context.Background(), "ghost", nil, nil)
	if !errors.Is(err, recerr.ErrUserNotFound) {
		t.Fatalf("Create err=%v, want ErrUserNotFound", err)
	}
	// A failed create leaves no cache entry behind.
	if _, err := svc.Read(context.Background(), "ghost", nil); !errors.Is(err, recerr.ErrNotFound) {
		t.Fatalf("Read after failed create err=%v, want ErrNotFound", err)
	}
}

func TestReadBeforeCreateAndAfterDelete(t *testing.T) {
	svc, _ := cacheFixture(t)
	ctx := context.Background()

	if _, err := svc.Read(ctx, "U1", nil); !errors.Is(err, recerr.ErrNotFound) {
		t.Fatalf("Read before Create err=%v, want ErrNotFound", err)
	}

	if _, err := svc.Create(ctx, "U1", nil, nil); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(ctx, "U1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Read(ctx, "U1", nil); !errors.Is(err, recerr.ErrNotFound) {
		t.Fatalf("Read after Delete err=%v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, "U1"); !errors.Is(err, recerr.ErrNotFound) {
		t.Fatalf("second Delete err=%v, want ErrNotFound", err)
	}
}

func TestReadPostHocFilters(t *testing.T) {
	svc, _ := cacheFixture(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "U1", nil, nil); err != nil {
		t.Fatalf("Create: %v", err)
	}

	minScore := 4.0
	got, err := svc.Read(ctx, "U1", &types.RecommendationFilter{MinScore: &minScore})
	if err != nil {
		t.Fatalf("Read(min_score): %v", err)
	}
	if ids := itemIDs(got); len(ids) != 1 || ids[0] != "C1" {
		t.Fatalf("min_score=4.0 items=%v, want [C1]", ids)
	}

	got, err = svc.Read(ctx, "U1", &types.RecommendationFilter{Topics: []string{"sports"}})
	if err != nil {
		t.Fatalf("Read(topics): %v", err)
	}
	if ids := itemIDs(got); len(ids) != 1 || ids[0] != "C3" {
		t.Fatalf("topics=[sports] items=%v, want [C3]", ids)
	}

	topK := 1
	got, err = svc.Read(ctx, "U1", &types.RecommendationFilter{TopK: &topK})
	if err != nil {
		t.Fatalf("Read(top_k): %v", err)
	}
	if ids := itemIDs(got); len(ids) != 1 || ids[0] != "C1" {
		t.Fatalf("top_k=1 items=%v, want [C1]", ids)
	}

	// Filtered reads never mutate the cached entry.
	got, err = svc.Read(ctx, "U1", nil)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if ids := itemIDs(got); len(ids) != 2 {
		t.Fatalf("cached items=%v after filtered reads, want the full [C1 C3]", ids)
	}
}

func TestUpdateRegeneratesUnderNewThresholds(t *testing.T) {
	svc, models := cacheFixture(t)
	ctx := context.Background()

	if _, err := svc.Update(ctx, "U1", nil, nil); !errors.Is(err, recerr.ErrNotFound) {
		t.Fatalf("Update before Create err=%v, want ErrNotFound", err)
	}

	first, err := svc.Create(ctx, "U1", nil, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	models.version = "T2"
	stricter := types.Thresholds{Motivation: 0.4, Pressure: 0.5, CreditLevel: types.CreditLevelPartial}
	updated, err := svc.Update(ctx, "U1", nil, &stricter)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(updated.Items) > len(first.Items) {
		t.Fatalf("stricter thresholds produced more items: %d > %d", len(updated.Items), len(first.Items))
	}
	// Only C3's motivation (1/2) clears 0.4; C1 sits at 1/3.
	if ids := itemIDs(updated); len(ids) != 1 || ids[0] != "C3" {
		t.Fatalf("items=%v, want [C3]", ids)
	}
	if updated.ModelVersion != "T2" {
		t.Fatalf("ModelVersion=%q, want T2 after regeneration", updated.ModelVersion)
	}

	got, err := svc.Read(ctx, "U1", nil)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got.Items) != 1 {
		t.Fatalf("cached items=%d, want the regenerated list", len(got.Items))
	}
}

func TestCreateEmptyAfterGatesIsSuccess(t *testing.T) {
	svc, _ := cacheFixture(t)

	// U1's credit band is partial; requiring full gates everything out.
	th := types.Thresholds{Motivation: 0.1, Pressure: 0.5, CreditLevel: types.CreditLevelFull}
	list, err := svc.Create(context.Background(), "U1", nil, &th)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(list.Items) != 0 {
		t.Fatalf("items=%v, want empty", itemIDs(list))
	}

	// The empty list is a real cache entry.
	got, err := svc.Read(context.Background(), "U1", nil)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got.Items) != 0 {
		t.Fatalf("cached items=%d, want 0", len(got.Items))
	}
}

func TestCancelledCreateLeavesCacheUntouched(t *testing.T) {
	svc, _ := cacheFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Generation ran to completion against in-memory fakes, but the result
	// of a cancelled request must never be stored.
	if _, err := svc.Create(ctx, "U1", nil, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("Create with cancelled ctx err=%v, want context.Canceled", err)
	}
	if _, err := svc.Read(context.Background(), "U1", nil); !errors.Is(err, recerr.ErrNotFound) {
		t.Fatalf("Read after cancelled Create err=%v, want ErrNotFound", err)
	}

	// A fresh create still works afterwards.
	if _, err := svc.Create(context.Background(), "U1", nil, nil); err != nil {
		t.Fatalf("Create after cancelled attempt: %v", err)
	}
}

func TestCancelledUpdateKeepsPreviousEntry(t *testing.T) {
	svc, models := cacheFixture(t)

	first, err := svc.Create(context.Background(), "U1", nil, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	models.version = "T2"
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Update(ctx, "U1", nil, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("Update with cancelled ctx err=%v, want context.Canceled", err)
	}

	got, err := svc.Read(context.Background(), "U1", nil)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.ModelVersion != first.ModelVersion {
		t.Fatalf("cached ModelVersion=%q after cancelled update, want %q", got.ModelVersion, first.ModelVersion)
	}
}

func TestConcurrentCreatesSameUser(t *testing.T) {
	svc, _ := cacheFixture(t)

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Create(context.Background(), "U1", nil, nil)
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, recerr.ErrAlreadyExists):
		default:
			t.Fatalf("unexpected Create error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("%d creates succeeded, want exactly 1", succeeded)
	}
}

func TestBatchCreateIsolatesFailures(t *testing.T) {
	svc, _ := cacheFixture(t)

	results := svc.BatchCreate(context.Background(), []string{"U1", "ghost", "U2"}, nil, nil)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	byUser := make(map[string]BatchResult, len(results))
	for _, r := range results {
		byUser[r.UserID] = r
	}
	if byUser["U1"].Err != nil {
		t.Fatalf("U1 err=%v, want success", byUser["U1"].Err)
	}
	if byUser["U2"].Err != nil {
		t.Fatalf("U2 err=%v, want success", byUser["U2"].Err)
	}
	if !errors.Is(byUser["ghost"].Err, recerr.ErrUserNotFound) {
		t.Fatalf("ghost err=%v, want ErrUserNotFound", byUser["ghost"].Err)
	}
	if byUser["U1"].List == nil || byUser["U2"].List == nil {
		t.Fatalf("successful batch results must carry their lists")
	}
}
