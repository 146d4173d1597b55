// Package audio converts inbound voice payloads (Ogg/Opus, MP3, M4A, ...)
// into raw LINEAR16 mono PCM with an ffmpeg subprocess.
//
// Each conversion owns a fresh temp dir that is removed when Convert
// returns, whatever the outcome. Every failure, including a payload that
// decodes to nothing, is reported as CONVERSION_FAILED.
package audio
