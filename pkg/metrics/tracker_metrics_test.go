package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/signin", "401"))

	RecordHTTPRequest("POST", "/signin", 401, 15*time.Millisecond)

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/signin", "401"))
	if after != before+1 {
		t.Errorf("requests counter = %v, want %v", after, before+1)
	}
}

func TestRecordUpstream(t *testing.T) {
	before := testutil.ToFloat64(UpstreamErrors.WithLabelValues("jooble"))

	RecordUpstream("jooble", time.Second, nil)
	RecordUpstream("jooble", time.Second, errors.New("502"))

	if got := testutil.ToFloat64(UpstreamErrors.WithLabelValues("jooble")); got != before+1 {
		t.Errorf("upstream errors = %v, want %v", got, before+1)
	}
}

func TestRecordCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(CacheHits.WithLabelValues("search"))
	misses := testutil.ToFloat64(CacheMisses.WithLabelValues("search"))

	RecordCacheLookup("search", true)
	RecordCacheLookup("search", false)
	RecordCacheLookup("search", false)

	if got := testutil.ToFloat64(CacheHits.WithLabelValues("search")); got != hits+1 {
		t.Errorf("hits = %v, want %v", got, hits+1)
	}
	if got := testutil.ToFloat64(CacheMisses.WithLabelValues("search")); got != misses+2 {
		t.Errorf("misses = %v, want %v", got, misses+2)
	}
}

func TestRegisterPoolGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	snap := PoolSnapshot{Total: 7, Acquired: 3, Idle: 4, Max: 25}

	if err := RegisterPoolGauges(reg, "primary", func() PoolSnapshot { return snap }); err != nil {
		t.Fatalf("RegisterPoolGauges() error = %v", err)
	}

	count, err := testutil.GatherAndCount(reg)
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if count != 4 {
		t.Errorf("gathered %d series, want 4", count)
	}

	if err := RegisterPoolGauges(reg, "primary", func() PoolSnapshot { return snap }); err == nil {
		t.Error("expected an error registering the same pool twice")
	}
}
