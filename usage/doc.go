// Package usage tracks processed audio per user and in total, and enforces
// the global audio quota.
//
// Rows live in two tables: audio_stats (one AudioRecord per processed
// message) and global_stats (a single GlobalStat running total). Both are
// written together after each transcription attempt.
package usage
