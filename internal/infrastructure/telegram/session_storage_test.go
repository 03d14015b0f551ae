package telegram

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"net"
	"testing"

	"github.com/gotd/td/session"

	checkererrors "github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/errors"
)

func TestMemorySessionStorageFresh(t *testing.T) {
	storage, err := NewMemorySessionStorage(context.Background(), "")
	if err != nil {
		t.Fatalf("NewMemorySessionStorage() error = %v", err)
	}

	if _, err := storage.LoadSession(context.Background()); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("LoadSession() error = %v, want session.ErrNotFound", err)
	}
	if _, err := storage.Token(); err == nil {
		t.Error("Token() of empty session expected error")
	}
}

func TestMemorySessionStorageTokenRoundTrip(t *testing.T) {
	ctx := context.Background()
	storage, _ := NewMemorySessionStorage(ctx, "")

	payload := []byte(`{"Version":1,"Data":{"DC":2,"Addr":"149.154.167.51:443"}}`)
	if err := storage.StoreSession(ctx, payload); err != nil {
		t.Fatalf("StoreSession() error = %v", err)
	}

	token, err := storage.Token()
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}

	restored, err := NewMemorySessionStorage(ctx, token)
	if err != nil {
		t.Fatalf("NewMemorySessionStorage(token) error = %v", err)
	}
	data, err := restored.LoadSession(ctx)
	if err != nil {
		t.Fatalf("LoadSession() error = %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("LoadSession() = %s, want %s", data, payload)
	}
}

func TestMemorySessionStorageIsolatesCallerBuffers(t *testing.T) {
	ctx := context.Background()
	storage, _ := NewMemorySessionStorage(ctx, "")

	payload := []byte(`{"Version":1}`)
	_ = storage.StoreSession(ctx, payload)
	payload[0] = 'X'

	data, _ := storage.LoadSession(ctx)
	if data[0] != '{' {
		t.Error("stored session aliases caller buffer")
	}
}

func telethonString(t *testing.T, dc byte, ip net.IP, port uint16) string {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteByte(dc)
	buf.Write(ip.To4())
	if err := binary.Write(&buf, binary.BigEndian, port); err != nil {
		t.Fatal(err)
	}
	buf.Write(bytes.Repeat([]byte{0x5a}, 256))
	return "1" + base64.URLEncoding.EncodeToString(buf.Bytes())
}

func TestMemorySessionStorageTelethonSeed(t *testing.T) {
	ctx := context.Background()
	seed := telethonString(t, 2, net.ParseIP("149.154.167.51"), 443)

	storage, err := NewMemorySessionStorage(ctx, seed)
	if err != nil {
		t.Fatalf("NewMemorySessionStorage(telethon) error = %v", err)
	}

	data, err := (&session.Loader{Storage: storage}).Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if data.DC != 2 {
		t.Errorf("DC = %d, want 2", data.DC)
	}
	if len(data.AuthKey) != 256 {
		t.Errorf("AuthKey length = %d, want 256", len(data.AuthKey))
	}

	if token, err := storage.Token(); err != nil || token == seed {
		t.Errorf("Token() = %q, %v; want re-encoded session", token, err)
	}
}

func TestMemorySessionStorageInvalidSeed(t *testing.T) {
	for _, seed := range []string{"not a session", "1AAAA", base64.StdEncoding.EncodeToString([]byte("plain text"))} {
		if _, err := NewMemorySessionStorage(context.Background(), seed); !errors.Is(err, checkererrors.ErrInvalidSession) {
			t.Errorf("seed %q: error = %v, want ErrInvalidSession", seed, err)
		}
	}
}
