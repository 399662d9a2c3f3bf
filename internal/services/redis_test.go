package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/chachabrian/rideflow-backend/internal/models"
	"github.com/redis/go-redis/v9"
)

// commandRecorder answers commands in-process so the sink can be tested
// without a server. SET values are kept and served back to GET.
type commandRecorder struct {
	mu     sync.Mutex
	args   [][]interface{}
	values map[string]string
	fail   error
}

func (r *commandRecorder) DialHook(next redis.DialHook) redis.DialHook { return next }

func (r *commandRecorder) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (r *commandRecorder) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		args := cmd.Args()
		r.args = append(r.args, args)
		if r.fail != nil {
			cmd.SetErr(r.fail)
			return r.fail
		}

		switch c := cmd.(type) {
		case *redis.StatusCmd:
			if cmd.Name() == "set" {
				r.values[args[1].(string)] = argString(args[2])
			}
			c.SetVal("OK")
		case *redis.IntCmd:
			c.SetVal(1)
		case *redis.StringCmd:
			val, ok := r.values[args[1].(string)]
			if !ok {
				c.SetErr(redis.Nil)
				return redis.Nil
			}
			c.SetVal(val)
		}
		return nil
	}
}

func (r *commandRecorder) commands(name string) [][]interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out [][]interface{}
	for _, a := range r.args {
		if a[0] == name {
			out = append(out, a)
		}
	}
	return out
}

func argString(v interface{}) string {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func newRecordedSink(t *testing.T) (*RedisSink, *commandRecorder) {
	t.Helper()
	rec := &commandRecorder{values: map[string]string{}}
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	client.AddHook(rec)
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSink(client), rec
}

func TestRedisSinkPublishStoresDriverLocation(t *testing.T) {
	ctx := context.Background()
	sink, rec := newRecordedSink(t)

	loc := &DriverLocationEvent{
		DriverID:  3,
		Location:  json.RawMessage(`{"lat":-1.29,"lng":36.82}`),
		Timestamp: time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC),
		IsOnline:  true,
	}
	if err := sink.Publish(ctx, Event{Type: EventDriverLocation, Data: loc}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	sets := rec.commands("set")
	if len(sets) != 1 || sets[0][1] != "driver:location:3" {
		t.Fatalf("expected one location write, got %v", sets)
	}

	pubs := rec.commands("publish")
	if len(pubs) != 1 || pubs[0][1] != RedisEventsChannel {
		t.Fatalf("expected one publish on %s, got %v", RedisEventsChannel, pubs)
	}
	var evt struct {
		Type string              `json:"type"`
		Data DriverLocationEvent `json:"data"`
	}
	if err := json.Unmarshal([]byte(argString(pubs[0][2])), &evt); err != nil {
		t.Fatalf("published payload: %v", err)
	}
	if evt.Type != EventDriverLocation || evt.Data.DriverID != 3 {
		t.Fatalf("unexpected published event %+v", evt)
	}

	got, err := sink.GetDriverLocation(ctx, 3)
	if err != nil {
		t.Fatalf("GetDriverLocation: %v", err)
	}
	if string(got.Location) != `{"lat":-1.29,"lng":36.82}` {
		t.Fatalf("unexpected cached location %s", got.Location)
	}
	if _, err := sink.GetDriverLocation(ctx, 4); !errors.Is(err, redis.Nil) {
		t.Fatalf("expected redis.Nil for unknown driver, got %v", err)
	}
}

func TestRedisSinkPublishOtherEventsOnlyPublishes(t *testing.T) {
	sink, rec := newRecordedSink(t)

	err := sink.Publish(context.Background(), Event{Type: EventRideStatus, Data: RideStatusEvent{Status: "accepted"}})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if sets := rec.commands("set"); len(sets) != 0 {
		t.Fatalf("expected no key writes, got %v", sets)
	}
	if pubs := rec.commands("publish"); len(pubs) != 1 {
		t.Fatalf("expected one publish, got %v", pubs)
	}
}

func TestRedisSinkPing(t *testing.T) {
	sink, rec := newRecordedSink(t)
	if err := sink.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	rec.fail = errors.New("connection refused")
	if err := sink.Ping(context.Background()); err == nil {
		t.Fatal("expected ping failure")
	}
}

func TestDriverLocationPrefersCache(t *testing.T) {
	ctx := context.Background()
	accounts, store := newAccounts(false)
	_, driver := seedDriver(t, store)

	sink, rec := newRecordedSink(t)
	accounts.UseLocationCache(sink)

	stale := "Westlands"
	_, _ = store.UpdateDriver(ctx, driver.ID, models.DriverPatch{CurrentLocation: &stale})

	loc, err := accounts.DriverLocation(ctx, driver.ID)
	if err != nil || loc == nil || *loc != "Westlands" {
		t.Fatalf("expected store location on cache miss, got %v %v", loc, err)
	}

	_ = sink.Publish(ctx, Event{Type: EventDriverLocation, Data: &DriverLocationEvent{
		DriverID: driver.ID,
		Location: json.RawMessage(`"Kilimani"`),
	}})
	loc, _ = accounts.DriverLocation(ctx, driver.ID)
	if loc == nil || *loc != "Kilimani" {
		t.Fatalf("expected cached location, got %v", loc)
	}

	rec.fail = errors.New("connection refused")
	loc, _ = accounts.DriverLocation(ctx, driver.ID)
	if loc == nil || *loc != "Westlands" {
		t.Fatalf("expected store fallback when the cache fails, got %v", loc)
	}
}
