package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ykvlv/etymology-bot/internal/domain"
)

func openTestSQLite(t *testing.T) *SQLiteRepo {
	t.Helper()
	repo, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

// each test runs against both implementations
func repos(t *testing.T) map[string]Repo {
	return map[string]Repo{
		"sqlite": openTestSQLite(t),
		"memory": NewMemory(),
	}
}

func TestRepo_GetUserNotFound(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			_, err := repo.GetUser(context.Background(), 42)
			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
}

func TestRepo_MergeKeepsUnrelatedFields(t *testing.T) {
	ctx := context.Background()
	sent := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)

	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, repo.Merge(ctx, 7, domain.LanguagePatch(domain.LangKyrgyz)))
			require.NoError(t, repo.Merge(ctx, 7, domain.InterestsPatch([]string{"music", "history"})))
			require.NoError(t, repo.Merge(ctx, 7, domain.IntervalPatch(5)))
			require.NoError(t, repo.Merge(ctx, 7, domain.SentPatch(sent)))

			require.NoError(t, repo.Merge(ctx, 7, domain.InterestsPatch([]string{"astronomy"})))

			p, err := repo.GetUser(ctx, 7)
			require.NoError(t, err)
			assert.Equal(t, domain.LangKyrgyz, p.Language)
			assert.Equal(t, []string{"astronomy"}, p.Interests)
			assert.Equal(t, 5, p.IntervalHours)
			require.NotNil(t, p.LastSentAt)
			assert.True(t, sent.Equal(*p.LastSentAt))
			assert.False(t, p.UpdatedAt.IsZero())
		})
	}
}

func TestRepo_LastSentIsMonotonic(t *testing.T) {
	ctx := context.Background()
	sent := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)

	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, repo.Merge(ctx, 1, domain.SentPatch(sent)))
			require.NoError(t, repo.Merge(ctx, 1, domain.SentPatch(sent.Add(-time.Hour))))

			p, err := repo.GetUser(ctx, 1)
			require.NoError(t, err)
			assert.True(t, sent.Equal(*p.LastSentAt), "got %v", p.LastSentAt)

			require.NoError(t, repo.Merge(ctx, 1, domain.SentPatch(sent.Add(time.Hour))))
			p, err = repo.GetUser(ctx, 1)
			require.NoError(t, err)
			assert.True(t, sent.Add(time.Hour).Equal(*p.LastSentAt))
		})
	}
}

func TestRepo_ListEligible(t *testing.T) {
	ctx := context.Background()

	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			// language only
			require.NoError(t, repo.Merge(ctx, 1, domain.LanguagePatch(domain.LangEnglish)))
			// language + interests
			require.NoError(t, repo.Merge(ctx, 2, domain.LanguagePatch(domain.LangEnglish)))
			require.NoError(t, repo.Merge(ctx, 2, domain.InterestsPatch([]string{"sports"})))
			// interests + interval, no language
			require.NoError(t, repo.Merge(ctx, 3, domain.InterestsPatch(nil)))
			require.NoError(t, repo.Merge(ctx, 3, domain.IntervalPatch(3)))
			// complete with empty interests
			require.NoError(t, repo.Merge(ctx, 4, domain.LanguagePatch(domain.LangRussian)))
			require.NoError(t, repo.Merge(ctx, 4, domain.InterestsPatch([]string{})))
			require.NoError(t, repo.Merge(ctx, 4, domain.IntervalPatch(2)))

			got, err := repo.ListEligible(ctx)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, int64(4), got[0].ChatID)
			assert.True(t, got[0].HasInterests)
			assert.Empty(t, got[0].Interests)
			assert.Nil(t, got[0].LastSentAt)

			// finishing profile 2 makes it eligible as well
			require.NoError(t, repo.Merge(ctx, 2, domain.IntervalPatch(24)))
			got, err = repo.ListEligible(ctx)
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, int64(2), got[0].ChatID)
			assert.Equal(t, int64(4), got[1].ChatID)
		})
	}
}

func TestSQLite_RejectsOutOfRangeInterval(t *testing.T) {
	repo := openTestSQLite(t)
	err := repo.Merge(context.Background(), 1, domain.IntervalPatch(25))
	require.Error(t, err)

	var storeErr *domain.StoreError
	assert.ErrorAs(t, err, &storeErr)
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "persist.db")

	repo, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, repo.Merge(ctx, 9, domain.LanguagePatch(domain.LangRussian)))
	require.NoError(t, repo.Close())

	// migrations must be a no-op on an up-to-date schema
	repo, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer repo.Close()

	p, err := repo.GetUser(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, domain.LangRussian, p.Language)
	assert.False(t, p.HasInterests)
}
