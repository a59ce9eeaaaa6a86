package shell

import (
	"context"
	"io"
	"log/slog"

	"github.com/aussiebroadwan/foodcar/pkg/phoneauth"
)

// Launch wires the SDK client, the session store and the pages from cfg and
// runs the shell until it exits. The session store lives exactly as long as
// the call.
func Launch(ctx context.Context, cfg Config, in io.Reader, out io.Writer, logger *slog.Logger) error {
	client := phoneauth.NewSDKClient(cfg.APIURL, phoneauth.FileTokenStore{Path: cfg.SessionFile})
	client.Logger = logger

	session := phoneauth.NewSessionStore(client, logger)
	session.Start()
	defer session.Close()

	opts := Options{
		In:      in,
		Out:     out,
		Session: session,
		Account: client,
		NewFlow: func() *phoneauth.Flow {
			return phoneauth.NewFlow(phoneauth.FlowConfig{
				Provider:    client,
				Renderer:    client,
				Records:     client,
				Session:     session,
				ContainerID: cfg.ChallengeContainer,
				Logger:      logger,
			})
		},
		Logger: logger,
	}
	if cfg.DevCodes {
		opts.DevCodes = client
	}

	return New(opts).Run(ctx)
}
