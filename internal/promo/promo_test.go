package promo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) ScheduleFetch(profile *Profile) error {
	args := m.Called(profile)
	return args.Error(0)
}

func TestShouldShowPromoAtStartup_AlwaysFalse(t *testing.T) {
	profiles := []*Profile{
		{},
		{OffTheRecord: true},
		{PromoSeen: true},
		{OffTheRecord: true, PromoSeen: true},
	}
	for _, p := range profiles {
		assert.False(t, ShouldShowPromoAtStartup(p, false))
		assert.False(t, ShouldShowPromoAtStartup(p, true))
	}
}

func TestShouldShowPromoAtStartup_NilProfilePanics(t *testing.T) {
	assert.Panics(t, func() {
		ShouldShowPromoAtStartup(nil, false)
	})
}

func TestStartupTips_NeverSchedulesFetch(t *testing.T) {
	fetcher := new(mockFetcher)
	tips := NewStartupTips(fetcher)

	profiles := []*Profile{
		{},
		{OffTheRecord: true},
		{PromoSeen: true},
	}
	for _, p := range profiles {
		assert.NoError(t, tips.OnStartup(p, false))
		assert.NoError(t, tips.OnStartup(p, true))
	}

	fetcher.AssertNotCalled(t, "ScheduleFetch", mock.Anything)
}
