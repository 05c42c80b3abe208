package jobs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/matryer/is"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"pingcrm-backend/internal/storage"
)

type fakeCounter struct {
	counts storage.Counts
	err    error
}

func (f fakeCounter) CountRecords(context.Context) (storage.Counts, error) {
	return f.counts, f.err
}

func TestCronLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)
	clogger := cronLogger{logger}
	clogger.Info("foo")
	clogger.Error(fmt.Errorf("bar"), "test")
	if buf.String() != "DEBU foo\nERRO test err=bar\n" {
		t.Errorf("unexpected log output: %s", buf.String())
	}
}

func TestRegister(t *testing.T) {
	is := is.New(t)
	ctx := log.WithContext(context.Background(), log.New(io.Discard))
	s := NewScheduler(ctx)

	bad := NewRecordCounts(fakeCounter{}, "not a spec")
	s.Register(ctx, NewRecordCounts(fakeCounter{}, ""))
	is.Equal(s.Jobs(), []string{"record-counts"})
	is.Equal(len(s.Entries()), 1)

	s2 := NewScheduler(ctx)
	s2.Register(ctx, bad)
	is.Equal(len(s2.Jobs()), 0)

	s.Start()
	s.Shutdown()
	is.Equal(len(s.Entries()), 0)
}

func TestRecordCountsRefresh(t *testing.T) {
	is := is.New(t)
	job := NewRecordCounts(fakeCounter{counts: storage.Counts{Accounts: 1, Users: 2, Contacts: 9, TrashedContacts: 1}}, "")
	is.NoErr(job.Refresh(context.Background()))

	is.Equal(promtest.ToFloat64(recordsGauge.WithLabelValues("account", "active")), 1.0)
	is.Equal(promtest.ToFloat64(recordsGauge.WithLabelValues("user", "active")), 2.0)
	is.Equal(promtest.ToFloat64(recordsGauge.WithLabelValues("contact", "active")), 9.0)
	is.Equal(promtest.ToFloat64(recordsGauge.WithLabelValues("contact", "trashed")), 1.0)

	failing := NewRecordCounts(fakeCounter{err: errors.New("boom")}, "")
	is.True(failing.Refresh(context.Background()) != nil)
	failing.Func(log.WithContext(context.Background(), log.New(io.Discard)))() // logs and returns
}
