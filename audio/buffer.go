package audio

import "time"

// EncodingLinear16 names raw signed 16-bit little-endian PCM.
const EncodingLinear16 = "LINEAR16"

const bytesPerSample = 2

// Buffer is converted audio: raw LINEAR16 samples ready for transcription.
type Buffer struct {
	Data       []byte
	SampleRate int
	Channels   int
}

// Encoding returns the sample encoding of Data.
func (b *Buffer) Encoding() string { return EncodingLinear16 }

// Seconds returns the playback length of the buffer.
func (b *Buffer) Seconds() float64 {
	if b == nil || b.SampleRate <= 0 || b.Channels <= 0 {
		return 0
	}
	return float64(len(b.Data)) / float64(b.SampleRate*b.Channels*bytesPerSample)
}

// Duration returns Seconds as a time.Duration.
func (b *Buffer) Duration() time.Duration {
	return time.Duration(b.Seconds() * float64(time.Second))
}

// Empty reports whether the buffer holds no samples.
func (b *Buffer) Empty() bool { return b == nil || len(b.Data) < bytesPerSample }
