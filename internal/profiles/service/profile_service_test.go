package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/folio-social/folio-backend/internal/apperr"
	authdomain "github.com/folio-social/folio-backend/internal/auth/domain"
	"github.com/folio-social/folio-backend/internal/profiles/cache"
	"github.com/folio-social/folio-backend/internal/profiles/domain"
	"github.com/folio-social/folio-backend/internal/profiles/repository"
)

// flakyStore fails every call with offlineErr while offline is set.
type flakyStore struct {
	*repository.RedisRepository
	offline    atomic.Bool
	offlineErr error
}

func (f *flakyStore) fail() error {
	if f.offline.Load() {
		return f.offlineErr
	}
	return nil
}

func (f *flakyStore) Get(ctx context.Context, uid string) (*domain.Profile, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	return f.RedisRepository.Get(ctx, uid)
}

func (f *flakyStore) Save(ctx context.Context, p *domain.Profile) error {
	if err := f.fail(); err != nil {
		return err
	}
	return f.RedisRepository.Save(ctx, p)
}

type testEnv struct {
	svc   *ProfileService
	store *flakyStore
	cache *cache.RedisCache
}

func setupService(t *testing.T) *testEnv {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := &flakyStore{
		RedisRepository: repository.NewRedisRepository(client),
		offlineErr:      fmt.Errorf("%w: transport is closing", apperr.ErrUnavailable),
	}
	c := cache.NewRedisCache(client, time.Hour)
	return &testEnv{svc: NewProfileService(store, c, zap.NewNop()), store: store, cache: c}
}

func ptr[T any](v T) *T { return &v }

var alex = authdomain.Identity{UID: "alex", Email: "alex@example.com", DisplayName: "Alex Google"}

func TestUpdateProfile_FirstSaveCreatesDefaults(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	p, err := env.svc.GetProfile(ctx, alex.UID)
	require.NoError(t, err)
	assert.Nil(t, p, "new users need setup")

	p, err = env.svc.UpdateProfile(ctx, alex, domain.ProfileUpdate{ProfileName: ptr("Alex")})
	require.NoError(t, err)
	assert.Equal(t, "Alex", p.ProfileName)
	assert.Equal(t, domain.LayoutGrid, p.Layout)
	assert.Equal(t, "#ffffff", p.Colors.Background)
	require.Len(t, p.ShowcaseItems, 1)
	assert.Equal(t, "About Me", p.ShowcaseItems[0].Title)
	assert.Equal(t, domain.AboutMeFallbackText, p.ShowcaseItems[0].Content)

	stored, err := env.svc.GetProfile(ctx, alex.UID)
	require.NoError(t, err)
	assert.Equal(t, p.ShowcaseItems, stored.ShowcaseItems)
}

func TestUpdateProfile_FirstSaveUsesDescription(t *testing.T) {
	env := setupService(t)

	p, err := env.svc.UpdateProfile(context.Background(), alex, domain.ProfileUpdate{
		ProfileName: ptr("Alex"),
		Description: ptr("Designer and illustrator"),
	})
	require.NoError(t, err)
	require.Len(t, p.ShowcaseItems, 1)
	assert.Equal(t, "Designer and illustrator", p.ShowcaseItems[0].Content)
}

func TestUpdateProfile_RejectsInvalidInput(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	_, err := env.svc.UpdateProfile(ctx, alex, domain.ProfileUpdate{Layout: ptr(domain.Layout("masonry"))})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = env.svc.UpdateProfile(ctx, alex, domain.ProfileUpdate{Colors: &domain.Colors{Background: "blue"}})
	assert.ErrorIs(t, err, domain.ErrInvalidProfile)

	_, err = env.svc.UpdateShowcase(ctx, alex, []domain.ShowcaseItem{{Type: domain.ItemLink, LinkURL: "javascript:alert(1)"}})
	assert.ErrorIs(t, err, domain.ErrInvalidProfile)
}

func TestGetProfile_OfflineFallsBackToCache(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	_, err := env.svc.UpdateProfile(ctx, alex, domain.ProfileUpdate{ProfileName: ptr("Alex")})
	require.NoError(t, err)

	env.store.offline.Store(true)
	p, err := env.svc.GetProfile(ctx, alex.UID)
	require.NoError(t, err)
	assert.Equal(t, "Alex", p.ProfileName)

	_, err = env.svc.GetProfile(ctx, "never-cached")
	assert.ErrorIs(t, err, apperr.ErrUnavailable)
}

func TestUpdateProfile_OfflineWrites(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	t.Run("without a cached copy the error surfaces", func(t *testing.T) {
		env.store.offline.Store(true)
		defer env.store.offline.Store(false)

		_, err := env.svc.UpdateProfile(ctx, alex, domain.ProfileUpdate{ProfileName: ptr("Alex")})
		assert.ErrorIs(t, err, apperr.ErrUnavailable)
	})

	t.Run("with a cached copy the write lands in the cache", func(t *testing.T) {
		_, err := env.svc.UpdateProfile(ctx, alex, domain.ProfileUpdate{ProfileName: ptr("Alex")})
		require.NoError(t, err)

		env.store.offline.Store(true)
		p, err := env.svc.UpdateProfile(ctx, alex, domain.ProfileUpdate{Description: ptr("offline edit")})
		require.NoError(t, err)
		assert.Equal(t, "offline edit", p.Description)

		cached, ok, err := env.cache.Get(ctx, alex.UID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "offline edit", cached.Description)

		env.store.offline.Store(false)
		remote, err := env.store.RedisRepository.Get(ctx, alex.UID)
		require.NoError(t, err)
		assert.Empty(t, remote.Description)
	})
}

func TestPortfolioBadgeIsDerived(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	items := []domain.ShowcaseItem{
		{Type: domain.ItemText, Title: "About Me", Content: "hi"},
		{Type: domain.ItemImage, Title: "Poster", ImageURL: "data:image/jpeg;base64,AAAA"},
		{Type: domain.ItemLink, Title: "Site", LinkURL: "https://alex.dev"},
	}
	p, err := env.svc.UpdateProfile(ctx, alex, domain.ProfileUpdate{
		ProfilePicture: ptr("https://img/alex.png"),
		Description:    ptr("Designer"),
		ShowcaseItems:  &items,
	})
	require.NoError(t, err)
	badge := p.Badge(domain.BadgePortfolio)
	require.NotNil(t, badge)
	assert.True(t, badge.Verified)
	for i, it := range p.ShowcaseItems {
		assert.NotEmpty(t, it.ID)
		assert.Equal(t, i, it.Order)
	}

	p, err = env.svc.UpdateShowcase(ctx, alex, items[:1])
	require.NoError(t, err)
	assert.Nil(t, p.Badge(domain.BadgePortfolio))
}

func TestBadges(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	admin := authdomain.Identity{UID: "root", Admin: true}

	_, err := env.svc.AddBadge(ctx, alex, domain.BadgeRequest{Type: domain.BadgeStudent})
	assert.ErrorIs(t, err, domain.ErrProfileSetupMissing)

	_, err = env.svc.UpdateProfile(ctx, alex, domain.ProfileUpdate{ProfileName: ptr("Alex")})
	require.NoError(t, err)

	_, err = env.svc.AddBadge(ctx, alex, domain.BadgeRequest{Type: domain.BadgePortfolio})
	assert.ErrorIs(t, err, domain.ErrBadgeNotAssignable)
	_, err = env.svc.AddBadge(ctx, alex, domain.BadgeRequest{Type: domain.BadgeAdmin})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = env.svc.AddBadge(ctx, alex, domain.BadgeRequest{Type: "wizard"})
	assert.ErrorIs(t, err, domain.ErrInvalidBadge)

	p, err := env.svc.AddBadge(ctx, alex, domain.BadgeRequest{
		Type:     domain.BadgeStudent,
		Metadata: map[string]string{"school": "RISD"},
	})
	require.NoError(t, err)
	require.NotNil(t, p.Badge(domain.BadgeStudent))
	assert.False(t, p.Badge(domain.BadgeStudent).Verified)

	_, err = env.svc.VerifyBadge(ctx, alex, alex.UID, domain.BadgeStudent)
	assert.ErrorIs(t, err, domain.ErrAdminRequired)
	_, err = env.svc.VerifyBadge(ctx, admin, alex.UID, domain.BadgeCertification)
	assert.ErrorIs(t, err, domain.ErrBadgeNotFound)

	p, err = env.svc.VerifyBadge(ctx, admin, alex.UID, domain.BadgeStudent)
	require.NoError(t, err)
	assert.True(t, p.Badge(domain.BadgeStudent).Verified)
	assert.NotNil(t, p.Badge(domain.BadgeStudent).VerifiedAt)

	p, err = env.svc.RemoveBadge(ctx, alex, domain.BadgeStudent)
	require.NoError(t, err)
	assert.Empty(t, p.Badges)
}

func TestBadgesFor(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		id := authdomain.Identity{UID: fmt.Sprintf("user-%d", i)}
		_, err := env.svc.UpdateProfile(ctx, id, domain.ProfileUpdate{ProfileName: ptr(id.UID)})
		require.NoError(t, err)
		if i%2 == 0 {
			_, err = env.svc.AddBadge(ctx, id, domain.BadgeRequest{Type: domain.BadgeCertification})
			require.NoError(t, err)
		}
	}

	uids := []string{"user-0", "user-1", "user-0", "ghost"}
	for i := 2; i < 12; i++ {
		uids = append(uids, fmt.Sprintf("user-%d", i))
	}
	badges, err := env.svc.BadgesFor(ctx, uids)
	require.NoError(t, err)
	assert.Len(t, badges, 13)
	assert.Len(t, badges["user-0"], 1)
	assert.Empty(t, badges["user-1"])
	assert.Empty(t, badges["ghost"])

	_, err = env.svc.BadgesFor(ctx, make([]string, maxBadgeLookups+1))
	assert.ErrorIs(t, err, domain.ErrTooManyLookups)
}

func TestDeleteProfile_RemovesMirrors(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	bea := authdomain.Identity{UID: "bea"}

	for _, id := range []authdomain.Identity{alex, bea} {
		_, err := env.svc.UpdateProfile(ctx, id, domain.ProfileUpdate{ProfileName: ptr(id.UID)})
		require.NoError(t, err)
	}
	now := time.Now()
	require.NoError(t, env.store.SetConnection(ctx, alex.UID, domain.Connection{UserID: bea.UID, ConnectedAt: now}))
	require.NoError(t, env.store.SetConnection(ctx, bea.UID, domain.Connection{UserID: alex.UID, ConnectedAt: now}))

	require.NoError(t, env.svc.DeleteProfile(ctx, alex.UID))

	p, err := env.svc.GetProfile(ctx, alex.UID)
	require.NoError(t, err)
	assert.Nil(t, p)

	ok, err := env.store.HasConnection(ctx, bea.UID, alex.UID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, cached, err := env.cache.Get(ctx, alex.UID)
	require.NoError(t, err)
	assert.False(t, cached)
}
