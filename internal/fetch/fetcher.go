package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrorKind classifies transport failures.
type ErrorKind string

const (
	KindBadStatus      ErrorKind = "bad_status"
	KindNetworkFailure ErrorKind = "network_failure"
)

// TransportError is returned by Fetch for every ordinary failure mode:
// a non-success HTTP status or a network-level fault.
type TransportError struct {
	Kind   ErrorKind
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Kind == KindBadStatus {
		return fmt.Sprintf("bad status: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("network failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Fetcher performs single-attempt HTTP retrieval with a bounded timeout
// and a response size cap.
type Fetcher struct {
	client       *http.Client
	probeTimeout time.Duration
	maxSize      int64
}

// NewFetcher creates a Fetcher. timeout bounds the whole GET exchange,
// probeTimeout bounds HEAD probes, maxSize bounds the response body in
// bytes.
func NewFetcher(timeout, probeTimeout time.Duration, maxSize int64) *Fetcher {
	return &Fetcher{
		client:       &http.Client{Timeout: timeout},
		probeTimeout: probeTimeout,
		maxSize:      maxSize,
	}
}

// Fetch performs a single GET against url and returns the full response
// body. No retries. Any non-2xx status yields a TransportError of kind
// bad_status; connection, DNS, timeout and body-read failures yield kind
// network_failure.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{Kind: KindNetworkFailure, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &TransportError{Kind: KindNetworkFailure, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{Kind: KindBadStatus, Status: resp.StatusCode}
	}

	limited := &io.LimitedReader{R: resp.Body, N: f.maxSize + 1}
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, &TransportError{Kind: KindNetworkFailure, Err: err}
	}
	if int64(len(body)) > f.maxSize {
		return nil, &TransportError{
			Kind: KindNetworkFailure,
			Err:  fmt.Errorf("response exceeds size limit of %d bytes", f.maxSize),
		}
	}

	return body, nil
}

// Probe issues a HEAD request and returns nil only for a success status.
// Used to reject unreachable URLs before a task is accepted.
func (f *Fetcher) Probe(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, f.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return &TransportError{Kind: KindNetworkFailure, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return &TransportError{Kind: KindNetworkFailure, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &TransportError{Kind: KindBadStatus, Status: resp.StatusCode}
	}

	return nil
}
