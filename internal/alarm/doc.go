// Package alarm provides the cancellable one-shot timer behind the settings
// cache's settle period.
//
// Set schedules a callback after a delay and replaces any pending countdown,
// so bursts of Set calls delay firing until the last one's delay elapses.
// The clock is injectable (github.com/benbjohnson/clock), letting tests
// advance time deterministically instead of sleeping.
package alarm
