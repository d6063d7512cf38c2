package telegramauth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/wicketplay/fantasy-cricket/internal/infrastructure/repository/memory"
	idgen "github.com/wicketplay/fantasy-cricket/internal/platform/id"
	"github.com/wicketplay/fantasy-cricket/internal/usecase"
)

const testBotToken = "12345:test-bot-token"

func newTestVerifier(t *testing.T) (*Verifier, *memory.UserRepository) {
	t.Helper()

	users := memory.NewUserRepository()
	ledger := memory.NewLedgerRepository(users)
	walletSvc := usecase.NewWalletService(ledger, users, idgen.NewRandomGenerator(), nil)
	userSvc := usecase.NewUserService(users, walletSvc, idgen.NewRandomGenerator(), 50, nil)

	return NewVerifier(Config{BotToken: testBotToken}, userSvc), users
}

func signInitData(t *testing.T, botToken string, fields map[string]string) string {
	t.Helper()

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, key+"="+fields[key])
	}

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(lines, "\n")))

	values := url.Values{}
	for key, value := range fields {
		values.Set(key, value)
	}
	values.Set("hash", hex.EncodeToString(mac.Sum(nil)))
	return values.Encode()
}

func TestVerifyAccessToken_CreatesUserOnFirstContact(t *testing.T) {
	t.Parallel()

	verifier, users := newTestVerifier(t)
	token := signInitData(t, testBotToken, map[string]string{
		"auth_date": strconv.FormatInt(time.Now().Unix(), 10),
		"user":      `{"id":777,"username":"kohli_fan","first_name":"Virat"}`,
	})

	principal, err := verifier.VerifyAccessToken(context.Background(), token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if principal.TelegramID != 777 {
		t.Fatalf("unexpected telegram id: %d", principal.TelegramID)
	}
	if principal.UserID == "" {
		t.Fatalf("expected user id assigned")
	}

	stored, found, err := users.GetByTelegramID(context.Background(), 777)
	if err != nil || !found {
		t.Fatalf("expected stored user, found=%v err=%v", found, err)
	}
	if stored.ID != principal.UserID {
		t.Fatalf("principal user id %s does not match stored %s", principal.UserID, stored.ID)
	}
}

func TestVerifyAccessToken_ReusesExistingProfile(t *testing.T) {
	t.Parallel()

	verifier, _ := newTestVerifier(t)
	token := signInitData(t, testBotToken, map[string]string{
		"auth_date": strconv.FormatInt(time.Now().Unix(), 10),
		"user":      `{"id":888,"username":"rohit"}`,
	})

	first, err := verifier.VerifyAccessToken(context.Background(), token)
	if err != nil {
		t.Fatalf("first verify: %v", err)
	}
	second, err := verifier.VerifyAccessToken(context.Background(), token)
	if err != nil {
		t.Fatalf("second verify: %v", err)
	}
	if first.UserID != second.UserID {
		t.Fatalf("expected stable user id, got %s then %s", first.UserID, second.UserID)
	}
}

func TestVerifyAccessToken_RejectsTamperedPayload(t *testing.T) {
	t.Parallel()

	verifier, _ := newTestVerifier(t)
	token := signInitData(t, testBotToken, map[string]string{
		"auth_date": strconv.FormatInt(time.Now().Unix(), 10),
		"user":      `{"id":999,"username":"honest"}`,
	})
	tampered := strings.Replace(token, "honest", "forged1", 1)

	if _, err := verifier.VerifyAccessToken(context.Background(), tampered); !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestVerifyAccessToken_RejectsWrongBotToken(t *testing.T) {
	t.Parallel()

	verifier, _ := newTestVerifier(t)
	token := signInitData(t, "54321:other-bot", map[string]string{
		"auth_date": strconv.FormatInt(time.Now().Unix(), 10),
		"user":      `{"id":1001}`,
	})

	if _, err := verifier.VerifyAccessToken(context.Background(), token); !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestVerifyAccessToken_RejectsStaleAuthDate(t *testing.T) {
	t.Parallel()

	verifier, _ := newTestVerifier(t)
	token := signInitData(t, testBotToken, map[string]string{
		"auth_date": strconv.FormatInt(time.Now().Add(-48*time.Hour).Unix(), 10),
		"user":      `{"id":1002}`,
	})

	if _, err := verifier.VerifyAccessToken(context.Background(), token); !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for stale auth date, got %v", err)
	}
}

func TestVerifyAccessToken_RejectsMissingHash(t *testing.T) {
	t.Parallel()

	verifier, _ := newTestVerifier(t)
	if _, err := verifier.VerifyAccessToken(context.Background(), "auth_date=1&user=%7B%22id%22%3A1%7D"); !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for missing hash, got %v", err)
	}
}
