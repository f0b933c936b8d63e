package chefbot

import "time"

// Season is a French season name as used in prompts ("printemps", "été", ...).
type Season string

const (
	SeasonSpring Season = "printemps"
	SeasonSummer Season = "été"
	SeasonAutumn Season = "automne"
	SeasonWinter Season = "hiver"
)

// TimeProvider provides time-related functionality for agents.
// It allows injecting a fixed clock in tests.
type TimeProvider interface {
	// Now returns the current time.
	Now() time.Time

	// Today returns today's date as a string (YYYY-MM-DD).
	Today() string

	// Season returns the current meteorological season (northern hemisphere).
	Season() Season
}

// DefaultTimeProvider is the default implementation using the system clock.
type DefaultTimeProvider struct{}

// NewDefaultTimeProvider creates a new DefaultTimeProvider.
func NewDefaultTimeProvider() *DefaultTimeProvider {
	return &DefaultTimeProvider{}
}

// Now returns the current system time.
func (p *DefaultTimeProvider) Now() time.Time {
	return time.Now()
}

// Today returns today's date in YYYY-MM-DD format.
func (p *DefaultTimeProvider) Today() string {
	return p.Now().Format("2006-01-02")
}

// Season returns the current season.
func (p *DefaultTimeProvider) Season() Season {
	return SeasonOf(p.Now())
}

// FixedTimeProvider always returns the same instant. Use it in tests.
type FixedTimeProvider struct {
	t time.Time
}

// NewFixedTimeProvider returns a provider frozen at t.
func NewFixedTimeProvider(t time.Time) *FixedTimeProvider {
	return &FixedTimeProvider{t: t}
}

// Now returns the fixed time.
func (p *FixedTimeProvider) Now() time.Time { return p.t }

// Today returns the fixed date in YYYY-MM-DD format.
func (p *FixedTimeProvider) Today() string { return p.t.Format("2006-01-02") }

// Season returns the season of the fixed time.
func (p *FixedTimeProvider) Season() Season { return SeasonOf(p.t) }

// SeasonOf maps a date to its meteorological season: March-May spring, June-August summer,
// September-November autumn, December-February winter.
func SeasonOf(t time.Time) Season {
	switch t.Month() {
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	case time.September, time.October, time.November:
		return SeasonAutumn
	default:
		return SeasonWinter
	}
}

// Compile-time checks.
var (
	_ TimeProvider = (*DefaultTimeProvider)(nil)
	_ TimeProvider = (*FixedTimeProvider)(nil)
)
