package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/foodcar/pkg/cryptox"
	"github.com/aussiebroadwan/foodcar/pkg/jwtx"
)

// SigningKeys is the identity token key material.
type SigningKeys struct {
	Signer   *jwtx.EdDSASigner
	KeySet   *jwtx.KeySet
	Verifier jwtx.Verifier
}

// InitSigningKeys loads the Ed25519 signing key from cfg.SigningKeyFile,
// creating it on first start so tokens survive restarts.
func InitSigningKeys(cfg Config, logger *slog.Logger) (*SigningKeys, error) {
	pemKey, err := cryptox.LoadOrCreateEd25519Key(cfg.SigningKeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load signing key: %w", err)
	}
	signer, err := jwtx.NewSignerEdDSA(pemKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse signing key: %w", err)
	}

	keys := jwtx.NewKeySet()
	keys.AddSigner(signer)

	logger.Info("signing key loaded", "kid", signer.KID(), "issuer", cfg.Issuer)
	return &SigningKeys{
		Signer:   signer,
		KeySet:   keys,
		Verifier: jwtx.NewVerifierEdDSA(keys, cfg.Issuer),
	}, nil
}
