package telegramauth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/wicketplay/fantasy-cricket/internal/domain/userprofile"
	"github.com/wicketplay/fantasy-cricket/internal/usecase"
)

const defaultMaxAge = 24 * time.Hour

// webAppSecretSalt is the fixed HMAC key Telegram prescribes for deriving
// the mini app signing secret from the bot token.
const webAppSecretSalt = "WebAppData"

type Config struct {
	BotToken string
	// MaxAge bounds how old the signed auth_date may be before the token is
	// rejected as stale.
	MaxAge time.Duration
}

// Verifier authenticates Telegram mini app initData strings. A valid
// signature proves the payload came from Telegram for this bot; the user
// profile is created on first contact.
type Verifier struct {
	botToken string
	maxAge   time.Duration
	users    *usecase.UserService
	now      func() time.Time
}

func NewVerifier(cfg Config, users *usecase.UserService) *Verifier {
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = defaultMaxAge
	}
	return &Verifier{
		botToken: strings.TrimSpace(cfg.BotToken),
		maxAge:   maxAge,
		users:    users,
		now:      time.Now,
	}
}

type initDataUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

func (v *Verifier) VerifyAccessToken(ctx context.Context, token string) (userprofile.Principal, error) {
	if v.botToken == "" {
		return userprofile.Principal{}, fmt.Errorf("%w: telegram auth is not configured", usecase.ErrDependencyUnavailable)
	}

	values, err := url.ParseQuery(token)
	if err != nil {
		return userprofile.Principal{}, fmt.Errorf("%w: malformed init data", usecase.ErrUnauthorized)
	}

	providedHash := strings.TrimSpace(values.Get("hash"))
	if providedHash == "" {
		return userprofile.Principal{}, fmt.Errorf("%w: init data hash is missing", usecase.ErrUnauthorized)
	}

	if !hmac.Equal([]byte(v.signature(values)), []byte(providedHash)) {
		return userprofile.Principal{}, fmt.Errorf("%w: init data signature mismatch", usecase.ErrUnauthorized)
	}

	authDate, err := strconv.ParseInt(strings.TrimSpace(values.Get("auth_date")), 10, 64)
	if err != nil || authDate <= 0 {
		return userprofile.Principal{}, fmt.Errorf("%w: init data auth date is invalid", usecase.ErrUnauthorized)
	}
	if age := v.now().Sub(time.Unix(authDate, 0)); age > v.maxAge {
		return userprofile.Principal{}, fmt.Errorf("%w: init data expired", usecase.ErrUnauthorized)
	}

	var parsed initDataUser
	if err := sonic.Unmarshal([]byte(values.Get("user")), &parsed); err != nil || parsed.ID == 0 {
		return userprofile.Principal{}, fmt.Errorf("%w: init data user is invalid", usecase.ErrUnauthorized)
	}

	profile, err := v.users.EnsureUser(ctx, usecase.EnsureUserInput{
		TelegramID:   parsed.ID,
		Username:     parsed.Username,
		FirstName:    parsed.FirstName,
		ReferralCode: strings.TrimSpace(values.Get("start_param")),
	})
	if err != nil {
		return userprofile.Principal{}, fmt.Errorf("ensure user: %w", err)
	}

	return userprofile.Principal{
		UserID:     profile.ID,
		TelegramID: profile.TelegramID,
		Username:   profile.Username,
	}, nil
}

// signature computes the expected hex HMAC over the data-check-string:
// every field except hash, sorted by key, joined as key=value lines.
func (v *Verifier) signature(values url.Values) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		if key == "hash" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, key+"="+values.Get(key))
	}
	checkString := strings.Join(lines, "\n")

	secret := hmac.New(sha256.New, []byte(webAppSecretSalt))
	secret.Write([]byte(v.botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(checkString))
	return hex.EncodeToString(mac.Sum(nil))
}
