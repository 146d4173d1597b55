// Package transcription defines the speech-to-text provider interface and
// the request and result types shared by backends.
//
// # Backends
//
//   - transcription/google: Google Cloud Speech-to-Text (gRPC)
//
// # Usage
//
//	req := opts.NewRequest(buf.Data, buf.SampleRate, buf.Channels)
//	res, err := p.Transcribe(ctx, req)
//	if err == nil && res.Empty() {
//	    // no speech detected
//	}
package transcription
