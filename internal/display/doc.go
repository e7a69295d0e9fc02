// Package display tracks which toasts are on screen and owns their
// auto-dismiss timers. The registry never expires anything itself; the
// Manager arms a timer when a toast first becomes visible and dismisses it
// through the registry when the timer fires.
package display
