package config

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/untibullet/pr-status-sync/internal/review"
)

// ErrInvalidGroups возвращается, если таблицу ревьюеров не удалось декодировать
var ErrInvalidGroups = errors.New("invalid reviewer groups")

type loginUsers struct {
	LoginUsers []struct {
		LoginUser    string `json:"loginUser" yaml:"loginUser"`
		Organization string `json:"organization" yaml:"organization"`
	} `json:"loginUsers" yaml:"loginUsers"`
}

// DecodeGroups декодирует base64 блоб с таблицей login -> организация.
// Внутри ожидается JSON; YAML разбирается, только если блоб не является JSON.
func DecodeGroups(blob string) ([]review.GroupEntry, error) {
	blob = strings.Join(strings.Fields(blob), "")
	if blob == "" {
		return nil, nil
	}

	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(blob, "="))
		if err != nil {
			return nil, fmt.Errorf("%w: base64: %v", ErrInvalidGroups, err)
		}
	}

	doc, err := decodeLoginUsers(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGroups, err)
	}

	entries := make([]review.GroupEntry, 0, len(doc.LoginUsers))
	for _, u := range doc.LoginUsers {
		entries = append(entries, review.GroupEntry{
			Login: strings.TrimSpace(u.LoginUser),
			Group: strings.TrimSpace(u.Organization),
		})
	}
	return entries, nil
}

func decodeLoginUsers(raw []byte) (loginUsers, error) {
	var doc loginUsers
	if json.Valid(raw) {
		err := json.Unmarshal(raw, &doc)
		return doc, err
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return loginUsers{}, err
	}
	return doc, nil
}

// ReviewerGroups строит таблицу групп ревьюеров. Ошибка декодирования логируется
// и приводит к пустой таблице.
func (c *Config) ReviewerGroups(logger *zap.Logger) review.GroupTable {
	if c.Reviewers.LoginUsersB64 == "" {
		logger.Warn("LOGIN_USERS_B64 is not set, all reviewers go to the fallback group")
		return review.NewGroupTable(nil)
	}

	entries, err := DecodeGroups(c.Reviewers.LoginUsersB64)
	if err != nil {
		logger.Error("failed to decode reviewer groups", zap.Error(err))
		return review.NewGroupTable(nil)
	}

	table := review.NewGroupTable(entries)
	logger.Debug("reviewer groups loaded", zap.Int("logins", table.Len()))
	return table
}
