package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// fakeRedis is a minimal in-memory stand-in for RedisClient, just enough to
// drive the middleware's get/set-if-absent/set flow without a real server.
type fakeRedis struct {
	values map[string]string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if v, ok := f.values[key]; ok {
		cmd.SetVal(v)
	} else {
		cmd.SetErr(redis.Nil)
	}
	return cmd
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	f.values[key] = value.(string)
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(ctx)
	if _, exists := f.values[key]; exists {
		cmd.SetVal(false)
		return cmd
	}
	f.values[key] = value.(string)
	cmd.SetVal(true)
	return cmd
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.values, k)
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(keys)))
	return cmd
}

func newTestRouter(redisClient RedisClient) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(IdempotencyMiddleware(DefaultIdempotencyConfig(redisClient)))
	calls := 0
	r.POST("/widgets", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{"calls": calls})
	})
	return r
}

func doPost(r *gin.Engine, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/widgets", strings.NewReader(body))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestIdempotencyMiddleware_MissingKeyRejected(t *testing.T) {
	r := newTestRouter(newFakeRedis())
	rec := doPost(r, "", `{"name":"a"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestIdempotencyMiddleware_ReplayReturnsCachedResponse(t *testing.T) {
	r := newTestRouter(newFakeRedis())

	first := doPost(r, "order-1", `{"name":"a"}`)
	if first.Code != http.StatusCreated {
		t.Fatalf("first call status = %d, want %d", first.Code, http.StatusCreated)
	}

	second := doPost(r, "order-1", `{"name":"a"}`)
	if second.Code != http.StatusCreated {
		t.Fatalf("replay status = %d, want %d", second.Code, http.StatusCreated)
	}
	if second.Body.String() != first.Body.String() {
		t.Fatalf("replay body = %s, want %s (handler should not run twice)", second.Body.String(), first.Body.String())
	}
}

func TestIdempotencyMiddleware_SameKeyDifferentBodyRejected(t *testing.T) {
	r := newTestRouter(newFakeRedis())

	doPost(r, "order-2", `{"name":"a"}`)
	rec := doPost(r, "order-2", `{"name":"b"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestGetUserID_Unset(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if _, ok := GetUserID(c); ok {
		t.Fatal("expected no user id in a fresh context")
	}
}

func TestGetIdempotencyKey_RoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(ContextKeyIdempotencyKey, "abc-123")

	key, ok := GetIdempotencyKey(c)
	if !ok || key != "abc-123" {
		t.Fatalf("GetIdempotencyKey() = (%q, %v), want (%q, true)", key, ok, "abc-123")
	}
}

func TestIsMethodRequired(t *testing.T) {
	methods := []string{"POST", "PUT"}
	if !isMethodRequired("POST", methods) {
		t.Error("expected POST to require idempotency")
	}
	if isMethodRequired("GET", methods) {
		t.Error("expected GET to not require idempotency")
	}
}

func TestMatchPath(t *testing.T) {
	if !matchPath("/inventory/lock", "/inventory/*") {
		t.Error("expected wildcard prefix to match")
	}
	if matchPath("/bookings", "/inventory/*") {
		t.Error("expected non-matching prefix to fail")
	}
}
