// Package promo models the startup promotion surface whose remote content
// fetch this project's patches disable.
package promo

// Profile is the opaque per-session handle the host evaluates the startup
// promotion decision against. The fields mirror the state the upstream
// decision used to consult; they are intentionally never read here.
type Profile struct {
	OffTheRecord bool
	PromoSeen    bool
}

// Fetcher schedules a network request to a vendor endpoint for promotional
// content shown on the new-tab surface.
type Fetcher interface {
	ScheduleFetch(profile *Profile) error
}

// ShouldShowPromoAtStartup reports whether promotional content may be shown
// at startup for profile. profile must be non-nil.
//
// The answer is unconditionally false: the branches that used to inspect
// incognito state and promo history led to scheduling the remote fetch, and
// returning early is the only way to keep that request from ever being
// issued. No state is read or written before the return.
func ShouldShowPromoAtStartup(profile *Profile, isNewProfile bool) bool {
	if profile == nil {
		panic("promo: nil profile")
	}
	return false
}

// StartupTips drives the new-tab tips surface during application startup.
type StartupTips struct {
	fetcher Fetcher
}

func NewStartupTips(fetcher Fetcher) *StartupTips {
	return &StartupTips{fetcher: fetcher}
}

// OnStartup evaluates the promotion decision once for the session and
// schedules a content fetch only when the decision allows showing it.
func (s *StartupTips) OnStartup(profile *Profile, isNewProfile bool) error {
	if !ShouldShowPromoAtStartup(profile, isNewProfile) {
		return nil
	}
	return s.fetcher.ScheduleFetch(profile)
}
