package shell

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/foodcar/pkg/phoneauth"
)

func (s *Shell) login(ctx context.Context) (string, error) {
	if s.session.State().SignedIn() {
		return PathHome, nil
	}

	flow := s.newFlow()
	defer flow.Close()

	fmt.Fprintln(s.out, "\n== Login ==")

	for flow.Step() == phoneauth.StepPhoneEntry {
		line, err := s.readLine(ctx, "Phone number (10 digits): ")
		if err != nil {
			return "", err
		}
		phone := phoneauth.DigitsOnly(line, 0)

		pending, err := flow.RequestCode(ctx, phone)
		if errors.Is(err, phoneauth.ErrAbandoned) {
			return "", ctx.Err()
		}
		if err != nil {
			s.alert(err)
			continue
		}
		fmt.Fprintf(s.out, "OTP sent to %s%s\n", phoneauth.CountryPrefix, phone)
		s.showDevCode(ctx, pending)
	}

	for {
		line, err := s.readLine(ctx, otpPrompt(flow.Timer()))
		if err != nil {
			return "", err
		}

		switch line {
		case "":
			continue
		case "change":
			// A new flow, and with it a new challenge.
			return PathLogin, nil
		case "resend":
			if !flow.Timer().Ready() {
				fmt.Fprintf(s.out, "Resend available in %ds\n", flow.Timer().Remaining())
				continue
			}
			pending, err := flow.Resend(ctx)
			if err != nil {
				s.alert(err)
				continue
			}
			fmt.Fprintln(s.out, "OTP resent")
			s.showDevCode(ctx, pending)
			continue
		}

		id, err := flow.Verify(ctx, flow.Pending(), phoneauth.DigitsOnly(line, 0))
		if errors.Is(err, phoneauth.ErrAbandoned) {
			return "", ctx.Err()
		}
		if err != nil {
			s.alert(err)
			continue
		}

		fmt.Fprintf(s.out, "Login successful. Welcome %s\n", displayName(id))
		return PathHome, nil
	}
}

func otpPrompt(t *phoneauth.ResendTimer) string {
	if r := t.Remaining(); r > 0 {
		return fmt.Sprintf("Enter OTP (resend in %ds, 'change' for another number): ", r)
	}
	return "Enter OTP ('resend' for a new code, 'change' for another number): "
}

func (s *Shell) showDevCode(ctx context.Context, pending phoneauth.PendingVerification) {
	if s.devCodes == nil {
		return
	}
	code, err := s.devCodes.DevCode(ctx, phoneauth.VerificationID(pending))
	if err != nil {
		s.logger.Warn("failed to read dev code", "error", err)
		return
	}
	fmt.Fprintf(s.out, "[dev] code %s\n", code)
}

func displayName(id phoneauth.Identity) string {
	if id.Name != "" {
		return id.Name
	}
	return id.Phone
}
