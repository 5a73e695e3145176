package middleware

import (
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

const (
	// HeaderRequestID is set on every request that does not already carry one.
	HeaderRequestID = "X-Request-ID"

	bearerPrefix = "Bearer "
)

// Snapshot is the view of a session the binding needs.
type Snapshot interface {
	// BearerCredential returns the credential and true only for authenticated sessions.
	BearerCredential() (string, bool)
}

// Binding mirrors the current session onto outgoing requests. The zero value is ready
// to use and attaches nothing.
type Binding struct {
	credential atomic.Pointer[string]
}

// NewBinding returns an empty binding.
func NewBinding() *Binding {
	return &Binding{}
}

// Sync records the credential to attach when snapshot is authenticated and clears it otherwise.
func (b *Binding) Sync(snapshot Snapshot) {
	if snapshot == nil {
		b.credential.Store(nil)
		return
	}
	credential, ok := snapshot.BearerCredential()
	if !ok || credential == "" {
		b.credential.Store(nil)
		return
	}
	b.credential.Store(&credential)
}

// Header returns the Authorization value that would be attached right now, or "".
func (b *Binding) Header() string {
	credential := b.credential.Load()
	if credential == nil {
		return ""
	}
	return bearerPrefix + *credential
}

// RoundTripper wraps next (http.DefaultTransport when nil) with the binding.
func (b *Binding) RoundTripper(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &transport{binding: b, next: next}
}

// Client returns a shallow copy of base whose transport is wrapped by the binding.
func (b *Binding) Client(base *http.Client) *http.Client {
	var client http.Client
	if base != nil {
		client = *base
	}
	client.Transport = b.RoundTripper(client.Transport)
	return &client
}

type transport struct {
	binding *Binding
	next    http.RoundTripper
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())

	if header := t.binding.Header(); header != "" {
		out.Header.Set("Authorization", header)
	} else {
		out.Header.Del("Authorization")
	}
	if strings.TrimSpace(out.Header.Get(HeaderRequestID)) == "" {
		out.Header.Set(HeaderRequestID, uuid.NewString())
	}

	return t.next.RoundTrip(out)
}

// BearerToken extracts the credential from an Authorization header value.
func BearerToken(value string) (string, bool) {
	if !strings.HasPrefix(value, bearerPrefix) {
		return "", false
	}

	token := value[len(bearerPrefix):]
	if token == "" {
		return "", false
	}

	return token, true
}
