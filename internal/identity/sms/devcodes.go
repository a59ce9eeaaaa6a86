package sms

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/foodcar/internal/identity/domain"
)

// DevCodes holds the plain code per verification id so a developer (or an
// e2e test) can read it back. Never enabled in production.
type DevCodes struct {
	mu   sync.RWMutex
	m    map[string]devEntry
	nowF func() time.Time
}

type devEntry struct {
	code      string
	expiresAt time.Time
}

func NewDevCodes() *DevCodes {
	return &DevCodes{
		m:    make(map[string]devEntry),
		nowF: time.Now,
	}
}

func (d *DevCodes) Put(verificationID, code string, expiresAt time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.m[verificationID] = devEntry{code: code, expiresAt: expiresAt}
}

// Get returns the code while it is still valid. Expired entries are dropped.
func (d *DevCodes) Get(verificationID string) (string, bool) {
	d.mu.RLock()
	e, ok := d.m[verificationID]
	d.mu.RUnlock()
	if !ok {
		return "", false
	}
	if !e.expiresAt.After(d.nowF()) {
		d.mu.Lock()
		delete(d.m, verificationID)
		d.mu.Unlock()
		return "", false
	}
	return e.code, true
}

// Sweep drops expired entries and returns how many were removed.
func (d *DevCodes) Sweep() int {
	now := d.nowF()
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for id, e := range d.m {
		if !e.expiresAt.After(now) {
			delete(d.m, id)
			n++
		}
	}
	return n
}

// LogSender writes codes to the log and into Codes. It is the default
// SMS_PROVIDER for development.
type LogSender struct {
	Logger *slog.Logger
	Codes  *DevCodes
}

func NewLogSender(logger *slog.Logger, codes *DevCodes) *LogSender {
	return &LogSender{Logger: logger, Codes: codes}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if s.Codes != nil {
		s.Codes.Put(msg.VerificationID, msg.Code, msg.ExpiresAt)
	}
	s.Logger.InfoContext(ctx, "dev sms",
		"verification_id", msg.VerificationID,
		"phone", domain.MaskPhone(msg.Phone),
		"code", msg.Code,
	)
	return nil
}
