// Package httpclient provides the outbound HTTP client used for the Telegram
// Bot API: a shared transport stamping the service User-Agent, optional
// retry, response size caps, and typed errors classified by status code.
//
//	client, err := httpclient.New(httpclient.Config{
//	    Timeout:     45 * time.Second,
//	    UserAgent:   version.UserAgent("voicescribe"),
//	    MaxBodySize: 20 << 20,
//	})
//
//	resp, err := client.Do(ctx, httpclient.Request{Path: fileURL})
//	if httpclient.IsTooLarge(err) {
//	    // refuse the file
//	}
//
// Unwrap exposes the underlying *http.Client for libraries that issue
// their own requests.
package httpclient
