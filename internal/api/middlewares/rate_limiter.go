package middlewares

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/5w1tchy/bookshelf-api/internal/api/httpx"
	"github.com/5w1tchy/bookshelf-api/internal/logger"
)

const msgTooManyRequests = "Terlalu banyak permintaan. Coba lagi nanti"

type KeyFunc func(r *http.Request) string

// PerIPKey keys limits by client address.
func PerIPKey(prefix string) KeyFunc {
	return func(r *http.Request) string {
		ip := clientIP(r)
		if ip == "" {
			ip = "unknown"
		}
		return prefix + ":" + ip
	}
}

func clientIP(r *http.Request) string {
	// X-Forwarded-For may hold a list: client, proxy1, proxy2...
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return xrip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

func tooManyRequests(w http.ResponseWriter, retryAfter int64) {
	if retryAfter < 1 {
		retryAfter = 1
	}
	w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
	httpx.Fail(w, http.StatusTooManyRequests, msgTooManyRequests)
}

// --------- Token Bucket (Redis + Lua) ---------

const tokenBucketLua = `
-- KEYS[1] = bucket key (hash with fields: tokens, ts)
-- ARGV[1] = rate per second, ARGV[2] = capacity
-- Returns: {allowed (1/0), remaining tokens (int), retry_after_ms (int)}
local key  = KEYS[1]
local rate = tonumber(ARGV[1])
local cap  = tonumber(ARGV[2])

local t = redis.call('TIME')
local now_ms = (tonumber(t[1]) * 1000) + math.floor(tonumber(t[2]) / 1000)

local data = redis.call('HMGET', key, 'tokens', 'ts')
local tokens = tonumber(data[1])
local ts     = tonumber(data[2])
if tokens == nil then
  tokens = cap
  ts = now_ms
end

local delta_ms = now_ms - ts
if delta_ms > 0 then
  tokens = math.min(cap, tokens + (delta_ms / 1000.0) * rate)
end

local allowed = 0
local retry_after_ms = 0
if tokens >= 1.0 then
  tokens = tokens - 1.0
  allowed = 1
else
  retry_after_ms = math.ceil((1.0 - tokens) * 1000.0 / rate)
end

redis.call('HSET', key, 'tokens', tokens, 'ts', now_ms)
redis.call('PEXPIRE', key, math.ceil((cap / rate) * 1000.0))

return {allowed, math.floor(tokens), retry_after_ms}
`

type RedisTokenBucket struct {
	rdb      redis.Scripter
	keyFn    KeyFunc
	ratePerS float64
	burst    int
	script   *redis.Script
}

func NewRedisTokenBucket(rdb redis.Scripter, ratePerSecond float64, burst int, keyFn KeyFunc) *RedisTokenBucket {
	return &RedisTokenBucket{
		rdb:      rdb,
		keyFn:    keyFn,
		ratePerS: ratePerSecond,
		burst:    burst,
		script:   redis.NewScript(tokenBucketLua),
	}
}

// Middleware lets requests through when Redis is unavailable.
func (tb *RedisTokenBucket) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		key := tb.keyFn(r)

		res, err := tb.script.Run(ctx, tb.rdb, []string{key},
			strconv.FormatFloat(tb.ratePerS, 'f', -1, 64),
			strconv.Itoa(tb.burst),
		).Int64Slice()
		if err != nil || len(res) != 3 {
			logger.FromContext(ctx).WarnContext(ctx, "token bucket unavailable, allowing request", "key", key, "error", err)
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Policy", "token-bucket")
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(tb.burst))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res[1], 10))

		if res[0] != 1 {
			sec := (res[2] + 999) / 1000
			logger.FromContext(ctx).WarnContext(ctx, "rate limited", "policy", "token-bucket", "key", key, "retry_after", sec)
			tooManyRequests(w, sec)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --------- Sliding Window (Redis ZSET) ---------

type RedisSlidingWindow struct {
	rdb    redis.Cmdable
	keyFn  KeyFunc
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRedisSlidingWindow(rdb redis.Cmdable, limit int, window time.Duration, keyFn KeyFunc) *RedisSlidingWindow {
	return &RedisSlidingWindow{rdb: rdb, keyFn: keyFn, limit: limit, window: window, now: time.Now}
}

// Middleware lets requests through when Redis is unavailable.
func (sw *RedisSlidingWindow) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := sw.now()
		nowMs := now.UnixMilli()
		windowMs := sw.window.Milliseconds()
		key := sw.keyFn(r)

		pipe := sw.rdb.TxPipeline()
		member := strconv.FormatInt(now.UnixNano(), 36) + ":" + GetRequestID(r)
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(nowMs), Member: member})
		pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(nowMs-windowMs, 10))
		countCmd := pipe.ZCard(ctx, key)
		oldestCmd := pipe.ZRangeWithScores(ctx, key, 0, 0)
		pipe.PExpire(ctx, key, sw.window+time.Second)
		if _, err := pipe.Exec(ctx); err != nil {
			logger.FromContext(ctx).WarnContext(ctx, "sliding window unavailable, allowing request", "key", key, "error", err)
			next.ServeHTTP(w, r)
			return
		}
		count := int(countCmd.Val())

		w.Header().Set("X-RateLimit-Policy", "sliding-window")
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(sw.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(0, sw.limit-count)))

		if count > sw.limit {
			var retrySec int64 = 1
			if oldest := oldestCmd.Val(); len(oldest) == 1 {
				ms := int64(oldest[0].Score) + windowMs - nowMs
				retrySec = int64(math.Ceil(float64(ms) / 1000))
			}
			logger.FromContext(ctx).WarnContext(ctx, "rate limited", "policy", "sliding-window", "key", key, "retry_after", retrySec)
			tooManyRequests(w, retrySec)
			return
		}
		next.ServeHTTP(w, r)
	})
}
