// Package shell is the FoodCar terminal client. It renders the login, home
// and profile pages and sends every guarded page through the route gate.
// Input is read on its own goroutine so a cancelled context ends a page even
// while it waits at a prompt.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/aussiebroadwan/foodcar/pkg/phoneauth"
)

// Pages.
const (
	PathLogin   = "/login"
	PathHome    = "/home"
	PathProfile = "/profile"
)

// errExit ends Run without error: end of input or an explicit quit.
var errExit = errors.New("shell: exit")

// Account is what the pages need beyond the login flow.
type Account interface {
	GetRecord(ctx context.Context, id string) (phoneauth.ProfileRecord, error)
	UpdateUser(ctx context.Context, token string, u phoneauth.ProfileUpdate) (phoneauth.ProfileRecord, error)
	SignOut(ctx context.Context) error
}

// DevCodeSource reads back a sent code from the dev SMS sink.
type DevCodeSource interface {
	DevCode(ctx context.Context, verificationID string) (string, error)
}

// Options wires a Shell. Session, Account and NewFlow are required.
type Options struct {
	In  io.Reader
	Out io.Writer

	Session *phoneauth.SessionStore
	Account Account
	// NewFlow starts a login session. Each visit to the login page gets
	// its own flow, and with it a fresh challenge.
	NewFlow  func() *phoneauth.Flow
	DevCodes DevCodeSource
	Gate     phoneauth.Gate
	Logger   *slog.Logger
}

type Shell struct {
	in        io.Reader
	lines     chan inputLine
	startRead sync.Once
	out       io.Writer
	session   *phoneauth.SessionStore
	account   Account
	newFlow   func() *phoneauth.Flow
	devCodes  DevCodeSource
	gate      phoneauth.Gate
	logger    *slog.Logger
}

func New(opts Options) *Shell {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Gate.LoginPath == "" {
		opts.Gate.LoginPath = PathLogin
	}
	return &Shell{
		in:       opts.In,
		lines:    make(chan inputLine),
		out:      opts.Out,
		session:  opts.Session,
		account:  opts.Account,
		newFlow:  opts.NewFlow,
		devCodes: opts.DevCodes,
		gate:     opts.Gate,
		logger:   opts.Logger,
	}
}

// Run shows pages starting at home until the input ends, the user quits or
// ctx is cancelled.
func (s *Shell) Run(ctx context.Context) error {
	path := PathHome
	for {
		if ctx.Err() != nil {
			return nil
		}

		var err error
		switch path {
		case PathLogin:
			path, err = s.login(ctx)
		case PathHome, PathProfile:
			path, err = s.guarded(ctx, path)
		default:
			s.logger.Warn("unknown page, going home", "path", path)
			path = PathHome
		}

		switch {
		case errors.Is(err, errExit), err != nil && ctx.Err() != nil:
			fmt.Fprintln(s.out, "Bye")
			return nil
		case err != nil:
			return err
		}
	}
}

// guarded renders path if the gate allows it and otherwise follows the
// gate's redirect.
func (s *Shell) guarded(ctx context.Context, path string) (string, error) {
	v, err := s.await(ctx)
	if err != nil {
		return "", err
	}
	if v.Decision == phoneauth.DecisionRedirect {
		s.logger.Debug("redirecting", "from", path, "to", v.RedirectTo)
		return v.RedirectTo, nil
	}

	if path == PathProfile {
		return s.profile(ctx)
	}
	return s.home(ctx)
}

// await shows the loading placeholder until the session has heard from the
// provider.
func (s *Shell) await(ctx context.Context) (phoneauth.Verdict, error) {
	v := s.gate.Evaluate(s.session.State())
	if v.Decision != phoneauth.DecisionPlaceholder {
		return v, nil
	}

	fmt.Fprintln(s.out, "Loading...")
	changed := make(chan struct{}, 1)
	unsubscribe := s.session.Subscribe(func(phoneauth.SessionState) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	for {
		v = s.gate.Evaluate(s.session.State())
		if v.Decision != phoneauth.DecisionPlaceholder {
			return v, nil
		}
		select {
		case <-ctx.Done():
			return v, ctx.Err()
		case <-changed:
		}
	}
}

type inputLine struct {
	text string
	err  error
}

// scan feeds lines to readLine until the input ends.
func (s *Shell) scan() {
	defer close(s.lines)
	sc := bufio.NewScanner(s.in)
	for sc.Scan() {
		s.lines <- inputLine{text: sc.Text()}
	}
	if err := sc.Err(); err != nil {
		s.lines <- inputLine{err: err}
	}
}

func (s *Shell) readLine(ctx context.Context, prompt string) (string, error) {
	s.startRead.Do(func() { go s.scan() })
	fmt.Fprint(s.out, prompt)

	var in inputLine
	select {
	case <-ctx.Done():
		fmt.Fprintln(s.out)
		return "", ctx.Err()
	case l, ok := <-s.lines:
		if !ok {
			fmt.Fprintln(s.out)
			return "", errExit
		}
		in = l
	}
	if in.err != nil {
		fmt.Fprintln(s.out)
		return "", fmt.Errorf("failed to read input: %w", in.err)
	}

	line := strings.TrimSpace(in.text)
	if line == "quit" || line == "exit" {
		return "", errExit
	}
	return line, nil
}

// alert shows err the way the pages report failures.
func (s *Shell) alert(err error) {
	s.logger.Debug("page error", "error", err)
	fmt.Fprintln(s.out, "! "+phoneauth.UserMessage(err))
}

func (s *Shell) logout(ctx context.Context) (string, error) {
	if err := s.account.SignOut(ctx); err != nil {
		s.logger.Warn("failed to sign out of provider", "error", err)
	}
	s.session.Logout()
	fmt.Fprintln(s.out, "Logged out")
	return PathHome, nil
}
