// internal/middleware/telegram.go
package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// TelegramUser — пользователь из initData мини-приложения.
type TelegramUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

var (
	ErrInitDataSignature = errors.New("подпись initData не совпадает")
	ErrInitDataExpired   = errors.New("initData устарели")
	ErrInitDataMalformed = errors.New("initData не разбираются")
)

// VerifyInitData проверяет подпись initData по схеме Telegram WebApp:
// строка проверки — отсортированные пары key=value без hash, через \n;
// секрет — HMAC-SHA256 от токена бота с ключом "WebAppData".
// maxAge ограничивает возраст auth_date (0 — не проверять).
func VerifyInitData(initData, botToken string, maxAge time.Duration, now time.Time) (*TelegramUser, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, ErrInitDataMalformed
	}

	gotHash := values.Get("hash")
	if gotHash == "" {
		return nil, ErrInitDataMalformed
	}

	pairs := make([]string, 0, len(values))
	for key := range values {
		if key == "hash" {
			continue
		}
		pairs = append(pairs, key+"="+values.Get(key))
	}
	sort.Strings(pairs)
	checkString := strings.Join(pairs, "\n")

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(checkString))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(gotHash)) {
		return nil, ErrInitDataSignature
	}

	if maxAge > 0 {
		authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
		if err != nil {
			return nil, ErrInitDataMalformed
		}
		if now.Sub(time.Unix(authDate, 0)) > maxAge {
			return nil, ErrInitDataExpired
		}
	}

	var user TelegramUser
	if raw := values.Get("user"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			return nil, ErrInitDataMalformed
		}
	}
	if user.ID == 0 {
		return nil, ErrInitDataMalformed
	}

	return &user, nil
}
