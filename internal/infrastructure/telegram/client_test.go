package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/gotd/td/bin"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"github.com/rs/zerolog"

	checkererrors "github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/errors"
)

func newTestSession() *Session {
	return &Session{logger: zerolog.New(io.Discard)}
}

func TestMapSignInError(t *testing.T) {
	upstream := errors.New("connection reset")

	tests := []struct {
		name        string
		err         error
		want        error
		wantPending bool
	}{
		{name: "success", err: nil, want: nil},
		{name: "password needed", err: auth.ErrPasswordAuthNeeded, want: checkererrors.ErrPasswordNeeded, wantPending: true},
		{name: "wrapped password needed", err: fmt.Errorf("sign in: %w", auth.ErrPasswordAuthNeeded), want: checkererrors.ErrPasswordNeeded, wantPending: true},
		{name: "sign up required", err: &auth.SignUpRequired{}, want: checkererrors.ErrSignUpRequired},
		{name: "invalid code", err: tgerr.New(400, "PHONE_CODE_INVALID"), want: checkererrors.ErrInvalidCode},
		{name: "expired code", err: tgerr.New(400, "PHONE_CODE_EXPIRED"), want: checkererrors.ErrInvalidCode},
		{name: "empty code", err: tgerr.New(400, "PHONE_CODE_EMPTY"), want: checkererrors.ErrInvalidCode},
		{name: "other rpc error", err: tgerr.New(400, "PHONE_NUMBER_BANNED"), want: nil},
		{name: "transport error", err: upstream, want: upstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession()
			got := s.mapSignInError(tt.err)

			switch {
			case tt.err == nil:
				if got != nil {
					t.Errorf("mapSignInError(nil) = %v", got)
				}
			case tt.want == nil:
				if got == nil || errors.Is(got, checkererrors.ErrInvalidCode) || errors.Is(got, checkererrors.ErrPasswordNeeded) {
					t.Errorf("mapSignInError() = %v, want a generic sign-in error", got)
				}
			case !errors.Is(got, tt.want):
				t.Errorf("mapSignInError() = %v, want %v", got, tt.want)
			}

			if s.passwordPending != tt.wantPending {
				t.Errorf("passwordPending = %v, want %v", s.passwordPending, tt.wantPending)
			}
		})
	}
}

func TestIsAuthorizedBeforeConnect(t *testing.T) {
	s := newTestSession()
	_ = s.mapSignInError(auth.ErrPasswordAuthNeeded)

	// not connected wins over the pending password
	if _, err := s.IsAuthorized(context.Background()); !errors.Is(err, checkererrors.ErrNotConnected) {
		t.Errorf("IsAuthorized() error = %v, want ErrNotConnected", err)
	}
}

func TestSignInRequiresCodeHash(t *testing.T) {
	s := newTestSession()

	err := s.SignIn(context.Background(), "+15550001234", "12345", "")
	if !errors.Is(err, checkererrors.ErrInvalidCode) {
		t.Errorf("SignIn() without hash error = %v, want ErrInvalidCode", err)
	}

	err = s.SignIn(context.Background(), "+15550001234", "12345", "8a1c2f4b9d7e")
	if !errors.Is(err, checkererrors.ErrNotConnected) {
		t.Errorf("SignIn() before Connect error = %v, want ErrNotConnected", err)
	}
}

func TestCloseBeforeConnect(t *testing.T) {
	s := newTestSession()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := s.Close(ctx); err != nil {
			t.Fatalf("Close() #%d error = %v", i+1, err)
		}
	}
	if _, err := s.SendMessage(ctx, "SpamBot", "/start"); !errors.Is(err, checkererrors.ErrNotConnected) {
		t.Errorf("SendMessage() after Close error = %v, want ErrNotConnected", err)
	}
}

func message(id int, out bool, text string) *tg.Message {
	return &tg.Message{
		ID:      id,
		Out:     out,
		PeerID:  &tg.PeerUser{UserID: 178220800},
		Date:    1700000000 + id,
		Message: text,
	}
}

func TestEarliestReply(t *testing.T) {
	tests := []struct {
		name     string
		messages []*tg.Message
		afterID  int
		want     string
	}{
		{
			name:     "empty history",
			messages: nil,
			afterID:  10,
			want:     "",
		},
		{
			name:     "only our own message",
			messages: []*tg.Message{message(11, true, "/start"), message(10, false, "old")},
			afterID:  10,
			want:     "",
		},
		{
			name: "earliest of several replies",
			messages: []*tg.Message{
				message(13, false, "third"),
				message(12, false, "second"),
				message(11, true, "/start"),
				message(10, false, "old"),
			},
			afterID: 10,
			want:    "second",
		},
		{
			name:     "unordered history",
			messages: []*tg.Message{message(12, false, "first"), message(14, false, "later")},
			afterID:  11,
			want:     "first",
		},
		{
			name:     "nothing newer than the mark",
			messages: []*tg.Message{message(9, false, "older"), message(8, false, "oldest")},
			afterID:  10,
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := earliestReply(tt.messages, tt.afterID)
			switch {
			case tt.want == "" && got != nil:
				t.Errorf("earliestReply() = %q, want none", got.Message)
			case tt.want != "" && (got == nil || got.Message != tt.want):
				t.Errorf("earliestReply() = %v, want %q", got, tt.want)
			}
		})
	}
}

// historyInvoker answers messages.getHistory with scripted pages; the last page repeats
type historyInvoker struct {
	mu    sync.Mutex
	pages [][]tg.MessageClass
	calls int
}

func (i *historyInvoker) Invoke(ctx context.Context, input bin.Encoder, output bin.Decoder) error {
	if _, ok := input.(*tg.MessagesGetHistoryRequest); !ok {
		return fmt.Errorf("unexpected request %T", input)
	}

	i.mu.Lock()
	page := i.pages[min(i.calls, len(i.pages)-1)]
	i.calls++
	i.mu.Unlock()

	var b bin.Buffer
	if err := (&tg.MessagesMessages{Messages: page}).Encode(&b); err != nil {
		return err
	}
	return output.Decode(&b)
}

func TestWaitReply(t *testing.T) {
	peer := &tg.InputPeerUser{UserID: 178220800, AccessHash: 42}

	t.Run("returns the first reply after the mark", func(t *testing.T) {
		invoker := &historyInvoker{pages: [][]tg.MessageClass{
			{message(11, true, "/start"), message(10, false, "old")},
			{message(13, false, "second"), message(12, false, "first"), message(11, true, "/start")},
		}}
		s := &Session{replyWait: time.Second, pollInterval: time.Millisecond, logger: zerolog.New(io.Discard)}

		got, err := s.waitReply(context.Background(), tg.NewClient(invoker), peer, 11)
		if err != nil {
			t.Fatalf("waitReply() error = %v", err)
		}
		if got != "first" {
			t.Errorf("waitReply() = %q, want first", got)
		}
		if invoker.calls != 2 {
			t.Errorf("history calls = %d, want 2", invoker.calls)
		}
	})

	t.Run("no reply before the deadline", func(t *testing.T) {
		invoker := &historyInvoker{pages: [][]tg.MessageClass{
			{message(11, true, "/start")},
		}}
		s := &Session{replyWait: 20 * time.Millisecond, pollInterval: time.Millisecond, logger: zerolog.New(io.Discard)}

		_, err := s.waitReply(context.Background(), tg.NewClient(invoker), peer, 11)
		if !errors.Is(err, checkererrors.ErrNoReply) {
			t.Errorf("waitReply() error = %v, want ErrNoReply", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		invoker := &historyInvoker{pages: [][]tg.MessageClass{{}}}
		s := &Session{replyWait: time.Minute, pollInterval: time.Millisecond, logger: zerolog.New(io.Discard)}

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		if _, err := s.waitReply(ctx, tg.NewClient(invoker), peer, 0); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("waitReply() error = %v, want deadline exceeded", err)
		}
	})
}
