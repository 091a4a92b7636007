package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/teamspace-io/teamspace/internal/auth"
	"github.com/teamspace-io/teamspace/internal/login"
)

type TokenCmd struct {
	Email          string        `help:"Principal email address" required:""`
	PrincipalID    string        `help:"Principal ID; derived from the email when omitted"`
	TTL            time.Duration `help:"Token lifetime" default:"1h"`
	SigningKeyFile string        `help:"path to ECDSA private key PEM" required:"" env:"TEAMSPACE_JWT_SIGNING_KEY_FILE"`
}

func (t *TokenCmd) Run(ctx context.Context) error {
	principalID := login.PrincipalID(t.Email)
	if t.PrincipalID != "" {
		parsed, err := uuid.Parse(t.PrincipalID)
		if err != nil {
			return fmt.Errorf("invalid principal ID: %w", err)
		}
		principalID = parsed
	}

	pemBytes, err := os.ReadFile(t.SigningKeyFile)
	if err != nil {
		return fmt.Errorf("failed to read signing key: %w", err)
	}

	token, err := auth.IssueToken(string(pemBytes), principalID, t.Email, t.TTL)
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
