package business

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/deps"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/entities"
	checkererrors "github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/errors"
)

// restrictionKeywords are matched case-insensitively against the verification peer's reply
var restrictionKeywords = []string{
	"ограничиваем доступ",
	"аккаунт ограничен",
	"spam ban",
	"restricted",
	"spam detected",
	"account limited",
	"нарушение правил",
}

// IsRestrictedReply reports whether the reply text contains any restriction keyword
func IsRestrictedReply(reply string) bool {
	text := strings.ToLower(reply)
	for _, keyword := range restrictionKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// RestrictionProbe asks the verification peer about the account and classifies its answer.
// The classification is a keyword heuristic and can misjudge unusual replies.
type RestrictionProbe struct {
	peer    string
	message string
	timeout time.Duration
	logger  zerolog.Logger
}

// NewRestrictionProbe creates a probe that messages peer with message
func NewRestrictionProbe(peer, message string, timeout time.Duration, logger zerolog.Logger) *RestrictionProbe {
	return &RestrictionProbe{
		peer:    peer,
		message: message,
		timeout: timeout,
		logger:  logger.With().Str("component", "restriction_probe").Logger(),
	}
}

// Probe classifies a connected session. No message is sent to unauthorized sessions.
func (p *RestrictionProbe) Probe(ctx context.Context, session deps.Session) entities.ProbeResult {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	authorized, err := session.IsAuthorized(ctx)
	if err != nil {
		if errors.Is(err, checkererrors.ErrPasswordNeeded) {
			return entities.ProbeResult{Status: entities.ProbeUnauthorized}
		}
		return entities.ProbeResult{Status: entities.ProbeError, Detail: err.Error()}
	}
	if !authorized {
		return entities.ProbeResult{Status: entities.ProbeUnauthorized}
	}

	reply, err := session.SendMessage(ctx, p.peer, p.message)
	if err != nil {
		p.logger.Error().Err(err).Str("peer", p.peer).Msg("restriction probe failed")
		return entities.ProbeResult{Status: entities.ProbeError, Detail: err.Error()}
	}

	if IsRestrictedReply(reply) {
		return entities.ProbeResult{Status: entities.ProbeRestricted, Reply: reply}
	}
	return entities.ProbeResult{Status: entities.ProbeOK, Reply: reply}
}

var _ deps.Prober = (*RestrictionProbe)(nil)
