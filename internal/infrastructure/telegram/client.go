package telegram

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/deps"
	checkererrors "github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/errors"
)

// defaultReplyPollInterval is how often the verification chat is polled for an answer
const defaultReplyPollInterval = time.Second

// Session implements deps.Session on top of a gotd/td client
type Session struct {
	client       *telegram.Client
	storage      *MemorySessionStorage
	replyWait    time.Duration
	pollInterval time.Duration
	logger       zerolog.Logger

	// Rate limiter for API calls
	rateLimiter *rate.Limiter

	mu         sync.Mutex
	api        *tg.Client
	connected  bool
	cancelFunc context.CancelFunc
	runDone    chan struct{}
	// passwordPending is set after a sign-in that answered SESSION_PASSWORD_NEEDED
	passwordPending bool
}

// Connect starts the client loop and waits until the connection is ready.
// The loop outlives ctx and stops on Close.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.connected {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	runCtx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	errChan := make(chan error, 1)
	runDone := make(chan struct{})

	go func() {
		defer close(runDone)
		err := s.client.Run(runCtx, func(ctx context.Context) error {
			close(ready)
			<-ctx.Done()
			return ctx.Err()
		})
		errChan <- err
	}()

	select {
	case <-ready:
	case err := <-errChan:
		cancel()
		if err == nil {
			err = errors.New("client stopped before becoming ready")
		}
		return fmt.Errorf("%w: %v", checkererrors.ErrConnectFailed, err)
	case <-ctx.Done():
		cancel()
		<-runDone
		return fmt.Errorf("%w: %v", checkererrors.ErrConnectFailed, ctx.Err())
	}

	s.mu.Lock()
	s.api = s.client.API()
	s.connected = true
	s.cancelFunc = cancel
	s.runDone = runDone
	s.mu.Unlock()

	s.logger.Debug().Msg("connected to Telegram")
	return nil
}

// Close stops the client loop and waits for it to exit or for ctx to expire.
// Safe to call more than once and before Connect.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return nil
	}
	cancel := s.cancelFunc
	runDone := s.runDone
	s.connected = false
	s.api = nil
	s.cancelFunc = nil
	s.runDone = nil
	s.mu.Unlock()

	cancel()

	select {
	case <-runDone:
		s.logger.Debug().Msg("disconnected from Telegram")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("timed out waiting for client shutdown: %w", ctx.Err())
	}
}

func (s *Session) apiClient(ctx context.Context) (*tg.Client, error) {
	s.mu.Lock()
	api := s.api
	s.mu.Unlock()

	if api == nil {
		return nil, checkererrors.ErrNotConnected
	}
	if err := s.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
	}
	return api, nil
}

// IsAuthorized reports whether the session is signed in
func (s *Session) IsAuthorized(ctx context.Context) (bool, error) {
	if _, err := s.apiClient(ctx); err != nil {
		return false, err
	}

	s.mu.Lock()
	pending := s.passwordPending
	s.mu.Unlock()
	if pending {
		return false, checkererrors.ErrPasswordNeeded
	}

	status, err := s.client.Auth().Status(ctx)
	if err != nil {
		if tgerr.Is(err, "SESSION_PASSWORD_NEEDED") {
			return false, checkererrors.ErrPasswordNeeded
		}
		return false, fmt.Errorf("failed to check auth status: %w", err)
	}
	return status.Authorized, nil
}

// SignIn signs in with a code that was requested earlier; codeHash is the phone_code_hash
// returned by that request. No new code is requested.
func (s *Session) SignIn(ctx context.Context, phone, code, codeHash string) error {
	if codeHash == "" {
		return fmt.Errorf("%w: phone_code_hash is empty", checkererrors.ErrInvalidCode)
	}
	if _, err := s.apiClient(ctx); err != nil {
		return err
	}

	_, err := s.client.Auth().SignIn(ctx, phone, code, codeHash)
	return s.mapSignInError(err)
}

func (s *Session) mapSignInError(err error) error {
	if err == nil {
		return nil
	}

	var signUp *auth.SignUpRequired
	switch {
	case errors.Is(err, auth.ErrPasswordAuthNeeded):
		s.mu.Lock()
		s.passwordPending = true
		s.mu.Unlock()
		return checkererrors.ErrPasswordNeeded
	case errors.As(err, &signUp):
		return checkererrors.ErrSignUpRequired
	case tgerr.Is(err, "PHONE_CODE_INVALID", "PHONE_CODE_EXPIRED", "PHONE_CODE_EMPTY"):
		return fmt.Errorf("%w: %v", checkererrors.ErrInvalidCode, err)
	default:
		return fmt.Errorf("failed to sign in: %w", err)
	}
}

// CheckPassword completes a pending sign-in with the two-factor password
func (s *Session) CheckPassword(ctx context.Context, password string) error {
	if _, err := s.apiClient(ctx); err != nil {
		return err
	}

	if _, err := s.client.Auth().Password(ctx, password); err != nil {
		if errors.Is(err, auth.ErrPasswordInvalid) || tgerr.Is(err, "PASSWORD_HASH_INVALID") {
			return checkererrors.ErrInvalidPassword
		}
		return fmt.Errorf("failed to check password: %w", err)
	}

	s.mu.Lock()
	s.passwordPending = false
	s.mu.Unlock()
	return nil
}

// SendMessage sends text to the user peer and waits for the first incoming reply
func (s *Session) SendMessage(ctx context.Context, peer, text string) (string, error) {
	api, err := s.apiClient(ctx)
	if err != nil {
		return "", err
	}

	inputPeer, err := s.resolveUser(ctx, api, peer)
	if err != nil {
		return "", err
	}

	lastID, err := s.lastMessageID(ctx, api, inputPeer)
	if err != nil {
		return "", err
	}

	if _, err := api.MessagesSendMessage(ctx, &tg.MessagesSendMessageRequest{
		Peer:     inputPeer,
		Message:  text,
		RandomID: rand.Int63(),
	}); err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}

	return s.waitReply(ctx, api, inputPeer, lastID)
}

// resolveUser resolves a username to an input peer
func (s *Session) resolveUser(ctx context.Context, api *tg.Client, username string) (*tg.InputPeerUser, error) {
	resolved, err := api.ContactsResolveUsername(ctx, username)
	if err != nil {
		if tgerr.Is(err, "USERNAME_NOT_OCCUPIED", "USERNAME_INVALID") {
			return nil, fmt.Errorf("%w: %s", checkererrors.ErrPeerNotFound, username)
		}
		return nil, fmt.Errorf("failed to resolve %s: %w", username, err)
	}

	for _, u := range resolved.Users {
		if user, ok := u.(*tg.User); ok {
			return &tg.InputPeerUser{UserID: user.ID, AccessHash: user.AccessHash}, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", checkererrors.ErrPeerNotFound, username)
}

func (s *Session) history(ctx context.Context, api *tg.Client, peer tg.InputPeerClass, limit int) ([]*tg.Message, error) {
	result, err := api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:  peer,
		Limit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	var raw []tg.MessageClass
	switch m := result.(type) {
	case *tg.MessagesMessages:
		raw = m.Messages
	case *tg.MessagesMessagesSlice:
		raw = m.Messages
	case *tg.MessagesChannelMessages:
		raw = m.Messages
	}

	messages := make([]*tg.Message, 0, len(raw))
	for _, msg := range raw {
		if message, ok := msg.(*tg.Message); ok {
			messages = append(messages, message)
		}
	}
	return messages, nil
}

func (s *Session) lastMessageID(ctx context.Context, api *tg.Client, peer tg.InputPeerClass) (int, error) {
	messages, err := s.history(ctx, api, peer, 1)
	if err != nil {
		return 0, err
	}
	if len(messages) == 0 {
		return 0, nil
	}
	return messages[0].ID, nil
}

// waitReply polls the chat until an incoming message newer than afterID arrives
func (s *Session) waitReply(ctx context.Context, api *tg.Client, peer tg.InputPeerClass, afterID int) (string, error) {
	deadline := time.Now().Add(s.replyWait)
	interval := s.pollInterval
	if interval <= 0 {
		interval = defaultReplyPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		messages, err := s.history(ctx, api, peer, 5)
		if err != nil {
			return "", err
		}

		if reply := earliestReply(messages, afterID); reply != nil {
			return reply.Message, nil
		}

		if time.Now().After(deadline) {
			return "", checkererrors.ErrNoReply
		}
	}
}

// earliestReply picks the oldest incoming message newer than afterID.
// messages are in history order, newest first.
func earliestReply(messages []*tg.Message, afterID int) *tg.Message {
	var reply *tg.Message
	for _, m := range messages {
		if m.ID > afterID && !m.Out && (reply == nil || m.ID < reply.ID) {
			reply = m
		}
	}
	return reply
}

// SessionToken exports the current session
func (s *Session) SessionToken(ctx context.Context) (string, error) {
	return s.storage.Token()
}

var _ deps.Session = (*Session)(nil)
