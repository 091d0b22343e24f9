package stockwatch

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-cafe-orders/internal/redisx"
)

type Alert struct {
	MenuID     int64     `json:"menuId"`
	MenuName   string    `json:"menuName"`
	Stock      int       `json:"stock"`
	Level      Level     `json:"level"`
	ObservedAt time.Time `json:"observedAt"`
}

// KEYS[1] alert hash, KEYS[2] observation hash
// ARGV[1] menu id, ARGV[2] observed unix micros, ARGV[3] alert JSON, empty to clear
var recordScript = redis.NewScript(`
local prev = redis.call('HGET', KEYS[2], ARGV[1])
if prev and tonumber(prev) > tonumber(ARGV[2]) then
	return 0
end
redis.call('HSET', KEYS[2], ARGV[1], ARGV[2])
if ARGV[3] == '' then
	redis.call('HDEL', KEYS[1], ARGV[1])
else
	redis.call('HSET', KEYS[1], ARGV[1], ARGV[3])
end
return 1
`)

// AlertStore keeps the latest non-normal level per menu in Redis.
type AlertStore struct {
	rdb redis.Cmdable
}

func NewAlertStore(rdb redis.Cmdable) *AlertStore {
	return &AlertStore{rdb: rdb}
}

// Record applies a stock observation unless a newer one for the same menu is
// already stored. A normal level removes the menu from the board. It reports
// whether the observation was applied.
func (s *AlertStore) Record(ctx context.Context, a Alert) (bool, error) {
	var body string
	if a.Level != LevelNormal {
		b, err := json.Marshal(a)
		if err != nil {
			return false, fmt.Errorf("marshal alert: %w", err)
		}
		body = string(b)
	}
	n, err := recordScript.Run(ctx, s.rdb,
		[]string{redisx.KeyStockAlerts, redisx.KeyStockAlertsSeen},
		strconv.FormatInt(a.MenuID, 10), a.ObservedAt.UnixMicro(), body,
	).Int()
	if err != nil {
		return false, fmt.Errorf("record alert for menu %d: %w", a.MenuID, err)
	}
	return n == 1, nil
}

// Alerts lists the board ordered by menu id.
func (s *AlertStore) Alerts(ctx context.Context) ([]Alert, error) {
	raw, err := s.rdb.HGetAll(ctx, redisx.KeyStockAlerts).Result()
	if err != nil {
		return nil, fmt.Errorf("read alerts: %w", err)
	}
	out := make([]Alert, 0, len(raw))
	for field, v := range raw {
		var a Alert
		if err := json.Unmarshal([]byte(v), &a); err != nil {
			return nil, fmt.Errorf("decode alert %s: %w", field, err)
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MenuID < out[j].MenuID })
	return out, nil
}
