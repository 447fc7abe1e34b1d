package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"procsync/internal/process/service"
)

type fakeHandler struct {
	refreshed []string
	windows   []time.Duration
	sweeps    []int
}

func (f *fakeHandler) Refresh(_ context.Context, number string) (service.RefreshResult, error) {
	f.refreshed = append(f.refreshed, number)
	return service.RefreshResult{Number: number, Status: service.StatusUpdated}, nil
}

func (f *fakeHandler) DiscoverWindow(_ context.Context, _ string, window time.Duration, _, _ int) (service.DiscoveryResult, error) {
	f.windows = append(f.windows, window)
	return service.DiscoveryResult{}, nil
}

func (f *fakeHandler) SweepStale(_ context.Context, limit int) (int, error) {
	f.sweeps = append(f.sweeps, limit)
	return 0, nil
}

type WorkerRoutingSuite struct {
	suite.Suite
	handler *fakeHandler
	worker  *Worker
}

func (s *WorkerRoutingSuite) SetupTest() {
	s.handler = &fakeHandler{}
	s.worker = NewWorker(nil, s.handler, nil)
}

func TestWorkerRoutingSuite(t *testing.T) {
	suite.Run(t, new(WorkerRoutingSuite))
}

func (s *WorkerRoutingSuite) deliver(envelope Envelope) {
	value, err := envelope.Encode()
	s.Require().NoError(err)
	s.worker.handle(context.Background(), &kgo.Record{Value: value})
}

func (s *WorkerRoutingSuite) TestRoutesRefresh() {
	s.deliver(Envelope{ID: "job-1", Kind: KindRefresh, Number: "0001"})
	s.Equal([]string{"0001"}, s.handler.refreshed)
}

func (s *WorkerRoutingSuite) TestRoutesDiscover() {
	s.deliver(Envelope{ID: "job-2", Kind: KindDiscover, Tier: "1", WindowMinutes: 30})
	s.Equal([]time.Duration{30 * time.Minute}, s.handler.windows)
}

func (s *WorkerRoutingSuite) TestRoutesSweep() {
	s.deliver(Envelope{ID: "job-3", Kind: KindSweep, Limit: 10})
	s.Equal([]int{10}, s.handler.sweeps)
}

func (s *WorkerRoutingSuite) TestUnknownKindIsSkipped() {
	s.deliver(Envelope{ID: "job-4", Kind: Kind("compact")})
	s.Empty(s.handler.refreshed)
	s.Empty(s.handler.windows)
	s.Empty(s.handler.sweeps)
}

func (s *WorkerRoutingSuite) TestUndecodableRecordIsDropped() {
	s.worker.handle(context.Background(), &kgo.Record{Value: []byte("{")})
	s.Empty(s.handler.refreshed)
	s.Empty(s.handler.windows)
	s.Empty(s.handler.sweeps)
}
