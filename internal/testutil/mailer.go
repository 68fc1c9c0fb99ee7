package testutil

import (
	"context"
	"sync"
)

// CaptureMailer records every code it is asked to send. When Err is set,
// SendOTP fails with it instead.
type CaptureMailer struct {
	mu   sync.Mutex
	sent map[string][]string
	Err  error
}

func NewCaptureMailer() *CaptureMailer {
	return &CaptureMailer{sent: make(map[string][]string)}
}

func (m *CaptureMailer) SendOTP(_ context.Context, to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.sent[to] = append(m.sent[to], code)
	return nil
}

// LastCode returns the most recent code sent to to.
func (m *CaptureMailer) LastCode(to string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	codes := m.sent[to]
	if len(codes) == 0 {
		return "", false
	}
	return codes[len(codes)-1], true
}

// Count returns how many codes were sent to to.
func (m *CaptureMailer) Count(to string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent[to])
}

// SetErr changes the delivery error for later calls.
func (m *CaptureMailer) SetErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}
