// Package schedule provides availability calendars for production lines.
//
// This package includes:
//   - Schedule interface returning the next availability slot after a moment
//   - Every() for fixed-interval slots
//   - Daily() and DailyIn() for a shift start at a specific time each day
//   - Weekly() and WeeklyIn() for a specific day and time each week
//   - Cron() and ParseCron() for cron expression-based calendars
//
// A line built with core.AvailableFrom takes its start time from the first
// slot of its calendar. Most users should import the root package
// github.com/jdziat/packaging-lines which re-exports these functions.
package schedule
