package delivery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ykvlv/etymology-bot/internal/domain"
	"github.com/ykvlv/etymology-bot/internal/metrics"
	"github.com/ykvlv/etymology-bot/internal/store"
)

// --- fakes ---

type fakeGenerator struct {
	mu       sync.Mutex
	variants []domain.Variant
	generate func(ctx context.Context, lang domain.Language, interests []string, v domain.Variant) (string, error)
}

func (f *fakeGenerator) Generate(ctx context.Context, lang domain.Language, interests []string, v domain.Variant) (string, error) {
	f.mu.Lock()
	f.variants = append(f.variants, v)
	f.mu.Unlock()
	if f.generate != nil {
		return f.generate(ctx, lang, interests, v)
	}
	return "etymology for " + string(lang), nil
}

type sent struct {
	chatID    int64
	messageID int
	text      string
	lang      domain.Language
}

type fakeMessenger struct {
	mu      sync.Mutex
	typing  []int64
	sent    []sent
	edited  []sent
	sendErr error
}

func (f *fakeMessenger) NotifyTyping(chatID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.typing = append(f.typing, chatID)
	return nil
}

func (f *fakeMessenger) SendContent(chatID int64, text string, lang domain.Language) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sent{chatID: chatID, text: text, lang: lang})
	return nil
}

func (f *fakeMessenger) EditContent(chatID int64, messageID int, text string, lang domain.Language) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.edited = append(f.edited, sent{chatID: chatID, messageID: messageID, text: text, lang: lang})
	return nil
}

type failingWriter struct{}

func (failingWriter) Merge(context.Context, int64, domain.Patch) error {
	return &domain.StoreError{Op: "merge", Err: errors.New("disk full")}
}

type fakeRecorder struct {
	mu         sync.Mutex
	deliveries map[string]int
	storeFails int
}

func (r *fakeRecorder) RecordDelivery(trigger, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deliveries == nil {
		r.deliveries = map[string]int{}
	}
	r.deliveries[trigger+"/"+result]++
}

func (r *fakeRecorder) ObserveGeneration(time.Duration) {}

func (r *fakeRecorder) RecordStoreFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storeFails++
}

// --- helpers ---

var now = time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)

func seed(t *testing.T, repo *store.MemoryRepo, chatID int64, last *time.Time) domain.Profile {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repo.Merge(ctx, chatID, domain.LanguagePatch(domain.LangEnglish)))
	require.NoError(t, repo.Merge(ctx, chatID, domain.InterestsPatch([]string{"music"})))
	require.NoError(t, repo.Merge(ctx, chatID, domain.IntervalPatch(2)))
	if last != nil {
		require.NoError(t, repo.Merge(ctx, chatID, domain.SentPatch(*last)))
	}
	p, err := repo.GetUser(ctx, chatID)
	require.NoError(t, err)
	return *p
}

func lastSent(t *testing.T, repo *store.MemoryRepo, chatID int64) *time.Time {
	t.Helper()
	p, err := repo.GetUser(context.Background(), chatID)
	require.NoError(t, err)
	return p.LastSentAt
}

// --- tests ---

func TestDeliver_SuccessStampsLastSent(t *testing.T) {
	repo := store.NewMemory()
	last := now.Add(-3 * time.Hour)
	p := seed(t, repo, 1, &last)

	gen := &fakeGenerator{}
	msg := &fakeMessenger{}
	rec := &fakeRecorder{}
	svc := NewService(gen, msg, repo, zaptest.NewLogger(t), Options{
		Selector: FixedSelector(domain.VariantStandard),
		Metrics:  rec,
	})

	err := svc.Deliver(context.Background(), Request{Profile: p, Trigger: TriggerScheduled, Now: now})
	require.NoError(t, err)

	require.Len(t, msg.sent, 1)
	assert.Equal(t, sent{chatID: 1, text: "etymology for english", lang: domain.LangEnglish}, msg.sent[0])
	assert.Equal(t, []int64{1}, msg.typing)
	assert.True(t, now.Equal(*lastSent(t, repo, 1)))
	assert.Equal(t, 1, rec.deliveries["scheduled/"+metrics.ResultSent])
}

func TestDeliver_GenerationFailureKeepsLastSent(t *testing.T) {
	repo := store.NewMemory()
	last := now.Add(-3 * time.Hour)
	p := seed(t, repo, 1, &last)

	gen := &fakeGenerator{generate: func(context.Context, domain.Language, []string, domain.Variant) (string, error) {
		return "", &domain.GenerationError{Variant: domain.VariantEnhanced, Err: domain.ErrQuotaExceeded}
	}}
	msg := &fakeMessenger{}
	svc := NewService(gen, msg, repo, zaptest.NewLogger(t), Options{Selector: FixedSelector(domain.VariantEnhanced)})

	err := svc.Deliver(context.Background(), Request{Profile: p, Trigger: TriggerScheduled, Now: now})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)

	assert.Empty(t, msg.sent)
	assert.True(t, last.Equal(*lastSent(t, repo, 1)))
}

func TestDeliver_PlainGeneratorErrorIsWrapped(t *testing.T) {
	repo := store.NewMemory()
	p := seed(t, repo, 1, nil)
	gen := &fakeGenerator{generate: func(context.Context, domain.Language, []string, domain.Variant) (string, error) {
		return "", errors.New("connection reset")
	}}
	svc := NewService(gen, &fakeMessenger{}, repo, zaptest.NewLogger(t), Options{Selector: FixedSelector(domain.VariantStandard)})

	err := svc.Deliver(context.Background(), Request{Profile: p, Trigger: TriggerScheduled, Now: now})
	var gErr *domain.GenerationError
	require.ErrorAs(t, err, &gErr)
	assert.Equal(t, domain.VariantStandard, gErr.Variant)
	assert.Nil(t, lastSent(t, repo, 1))
}

func TestDeliver_SendFailureKeepsLastSent(t *testing.T) {
	repo := store.NewMemory()
	p := seed(t, repo, 1, nil)
	msg := &fakeMessenger{sendErr: errors.New("Forbidden: bot was blocked by the user")}
	rec := &fakeRecorder{}
	svc := NewService(&fakeGenerator{}, msg, repo, zaptest.NewLogger(t), Options{Metrics: rec})

	err := svc.Deliver(context.Background(), Request{Profile: p, Trigger: TriggerScheduled, Now: now})
	var dErr *domain.DeliveryError
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, int64(1), dErr.ChatID)
	assert.Nil(t, lastSent(t, repo, 1))
	assert.Equal(t, 1, rec.deliveries["scheduled/"+metrics.ResultSendFailed])
}

func TestDeliver_GenerationTimeout(t *testing.T) {
	repo := store.NewMemory()
	p := seed(t, repo, 1, nil)
	gen := &fakeGenerator{generate: func(ctx context.Context, _ domain.Language, _ []string, _ domain.Variant) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	msg := &fakeMessenger{}
	svc := NewService(gen, msg, repo, zaptest.NewLogger(t), Options{GenerateTimeout: 10 * time.Millisecond})

	err := svc.Deliver(context.Background(), Request{Profile: p, Trigger: TriggerScheduled, Now: now})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	var gErr *domain.GenerationError
	assert.ErrorAs(t, err, &gErr)
	assert.Empty(t, msg.sent)
	assert.Nil(t, lastSent(t, repo, 1))
}

func TestDeliver_OnDemandStamping(t *testing.T) {
	for _, stamp := range []bool{true, false} {
		repo := store.NewMemory()
		p := seed(t, repo, 1, nil)
		svc := NewService(&fakeGenerator{}, &fakeMessenger{}, repo, zaptest.NewLogger(t), Options{
			StampOnDemand: stamp,
			Now:           func() time.Time { return now },
		})

		require.NoError(t, svc.Deliver(context.Background(), Request{Profile: p, Trigger: TriggerOnDemand}))
		if stamp {
			require.NotNil(t, lastSent(t, repo, 1))
			assert.True(t, now.Equal(*lastSent(t, repo, 1)))
		} else {
			assert.Nil(t, lastSent(t, repo, 1))
		}
	}
}

func TestDeliver_EditsExistingMessage(t *testing.T) {
	repo := store.NewMemory()
	p := seed(t, repo, 5, nil)
	msg := &fakeMessenger{}
	svc := NewService(&fakeGenerator{}, msg, repo, zaptest.NewLogger(t), Options{StampOnDemand: true})

	require.NoError(t, svc.Deliver(context.Background(), Request{Profile: p, Trigger: TriggerOnDemand, EditMessageID: 77}))
	assert.Empty(t, msg.sent)
	require.Len(t, msg.edited, 1)
	assert.Equal(t, 77, msg.edited[0].messageID)
}

func TestDeliver_StoreFailureIsNotFatal(t *testing.T) {
	repo := store.NewMemory()
	p := seed(t, repo, 1, nil)
	msg := &fakeMessenger{}
	rec := &fakeRecorder{}
	svc := NewService(&fakeGenerator{}, msg, failingWriter{}, zaptest.NewLogger(t), Options{Metrics: rec})

	err := svc.Deliver(context.Background(), Request{Profile: p, Trigger: TriggerScheduled, Now: now})
	require.NoError(t, err)
	assert.Len(t, msg.sent, 1)
	assert.Equal(t, 1, rec.storeFails)
}

func TestDeliver_PassesSelectedVariant(t *testing.T) {
	repo := store.NewMemory()
	p := seed(t, repo, 1, nil)
	gen := &fakeGenerator{}
	svc := NewService(gen, &fakeMessenger{}, repo, zaptest.NewLogger(t), Options{Selector: FixedSelector(domain.VariantEnhanced)})

	require.NoError(t, svc.Deliver(context.Background(), Request{Profile: p, Trigger: TriggerScheduled, Now: now}))
	assert.Equal(t, []domain.Variant{domain.VariantEnhanced}, gen.variants)
}

func TestWeightedSelector(t *testing.T) {
	s := NewWeightedSelector(0.4)
	for _, tt := range []struct {
		draw float64
		want domain.Variant
	}{
		{0, domain.VariantEnhanced},
		{0.39, domain.VariantEnhanced},
		{0.4, domain.VariantStandard},
		{0.99, domain.VariantStandard},
	} {
		s.float = func() float64 { return tt.draw }
		assert.Equal(t, tt.want, s.Select(), "draw %v", tt.draw)
	}

	// the default source stays within the two variants
	d := NewWeightedSelector(DefaultEnhancedRatio)
	for i := 0; i < 100; i++ {
		v := d.Select()
		assert.Contains(t, []domain.Variant{domain.VariantStandard, domain.VariantEnhanced}, v)
	}
}
