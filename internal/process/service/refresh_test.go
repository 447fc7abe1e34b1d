package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"procsync/internal/eproc"
	"procsync/internal/platform/lock"
	"procsync/internal/process/store"
	"procsync/internal/reference"
	"procsync/pkg/platform/sentinel"
	"procsync/pkg/requestcontext"
)

type RefreshSuite struct {
	suite.Suite
	registry  *fakeRegistry
	stores    Stores
	processes *store.MemoryProcesses
	locker    *lock.Memory
	svc       *Service
}

func (s *RefreshSuite) SetupTest() {
	s.registry = newFakeRegistry()
	s.processes = store.NewMemoryProcesses()
	s.locker = lock.NewMemory()
	s.stores = Stores{
		Processes: s.processes,
		Snapshots: store.NewMemorySnapshots(),
		Events:    store.NewMemoryEvents(),
		Parties:   store.NewMemoryParties(),
	}

	refs := reference.NewInMemory()
	refs.AddClass("279", "Procedimento Comum")
	refs.AddLocality("8101", "Curitiba")
	refs.AddJudgingBody("990", "1a Vara Federal")

	s.svc = New(s.stores, refs, s.registry, &fakeDispatcher{}, s.locker)
}

func TestRefreshSuite(t *testing.T) {
	suite.Run(t, new(RefreshSuite))
}

func fullRawProcess() *eproc.RawProcess {
	return &eproc.RawProcess{
		BasicData: eproc.RawBasicData{
			ClassCode:       "279",
			LocalityCode:    "8101",
			JudgingBodyCode: "990",
			SecrecyLevel:    intPtr(0),
			LitigationValue: strPtr("1500.00"),
			Poles: []eproc.RawPole{
				{
					Pole: "AT",
					Parties: []eproc.RawParty{
						{Person: eproc.RawPerson{Name: "Maria da Silva"}},
					},
				},
			},
		},
		Movements: []eproc.RawMovement{
			{ID: "m1", DateTime: "20260115103000", Description: "Distribuido"},
			{ID: "m2", DateTime: "20260116090000", Description: "Conclusos"},
		},
		Documents: nil,
	}
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func (s *RefreshSuite) TestFullRefreshCommits() {
	s.registry.processes["0001"] = fullRawProcess()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	result, err := s.svc.Refresh(ctx, "0001")
	s.Require().NoError(err)
	s.Equal(StatusUpdated, result.Status)

	proc, err := s.processes.Find(ctx, "0001")
	s.Require().NoError(err)
	s.True(proc.Fresh)
	s.False(proc.Updating)
	s.Equal(now, proc.LastUpdatedAt)
	s.Require().NotNil(proc.Class)
	s.Equal("Procedimento Comum", proc.Class.Name)

	snap, err := s.stores.Snapshots.Find(ctx, "0001")
	s.Require().NoError(err)
	s.Equal(now, snap.FetchedAt)

	events, err := s.stores.Events.ListByProcess(ctx, "0001")
	s.Require().NoError(err)
	s.Len(events, 2)

	parties, err := s.stores.Parties.ListByProcess(ctx, "0001")
	s.Require().NoError(err)
	s.Len(parties, 1)
}

func (s *RefreshSuite) TestHeldLockSkips() {
	unlock, err := s.locker.Acquire(context.Background(), "refresh:0001", time.Minute)
	s.Require().NoError(err)
	defer unlock(context.Background())

	result, err := s.svc.Refresh(context.Background(), "0001")
	s.Require().NoError(err)
	s.Equal(StatusSkipped, result.Status)
}

func (s *RefreshSuite) TestRegistryMissIsReportedNotFatal() {
	result, err := s.svc.Refresh(context.Background(), "9999")
	s.Require().NoError(err)
	s.Equal(StatusFailed, result.Status)
	s.Equal("not found in registry", result.Detail)

	proc, err := s.processes.Find(context.Background(), "9999")
	s.Require().NoError(err)
	s.False(proc.Updating, "updating must be cleared after a failed run")
	s.False(proc.Fresh)
}

func (s *RefreshSuite) TestRegistryOutageIsReportedNotFatal() {
	s.registry.fetchErr = sentinel.ErrUnavailable

	result, err := s.svc.Refresh(context.Background(), "0001")
	s.Require().NoError(err)
	s.Equal(StatusFailed, result.Status)
}

func (s *RefreshSuite) TestMalformedHeaderKeepsEventsAndParties() {
	raw := fullRawProcess()
	raw.BasicData.SecrecyLevel = nil
	s.registry.processes["0001"] = raw

	result, err := s.svc.Refresh(context.Background(), "0001")
	s.Require().NoError(err)
	s.Equal(StatusFailed, result.Status)

	proc, err := s.processes.Find(context.Background(), "0001")
	s.Require().NoError(err)
	s.False(proc.Fresh, "a failed header extraction must not commit freshness")
	s.False(proc.Updating)

	events, err := s.stores.Events.ListByProcess(context.Background(), "0001")
	s.Require().NoError(err)
	s.Len(events, 2, "events land before the header commit and stay")
}

func (s *RefreshSuite) TestCancelledCallerDoesNotAbortTheRun() {
	s.registry.processes["0001"] = fullRawProcess()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.svc.Refresh(ctx, "0001")
	s.Require().NoError(err)
	s.Equal(StatusUpdated, result.Status)

	proc, err := s.processes.Find(context.Background(), "0001")
	s.Require().NoError(err)
	s.True(proc.Fresh)
}

func (s *RefreshSuite) TestSecondRefreshAppendsNothingNew() {
	s.registry.processes["0001"] = fullRawProcess()

	_, err := s.svc.Refresh(context.Background(), "0001")
	s.Require().NoError(err)
	result, err := s.svc.Refresh(context.Background(), "0001")
	s.Require().NoError(err)
	s.Equal(StatusUpdated, result.Status)

	events, err := s.stores.Events.ListByProcess(context.Background(), "0001")
	s.Require().NoError(err)
	s.Len(events, 2)

	parties, err := s.stores.Parties.ListByProcess(context.Background(), "0001")
	s.Require().NoError(err)
	s.Len(parties, 1, "parties are replaced, not accumulated")
}
