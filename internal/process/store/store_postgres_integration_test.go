//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"procsync/internal/eproc"
	"procsync/internal/process/models"
	"procsync/internal/process/store"
	"procsync/internal/reference"
	"procsync/pkg/platform/sentinel"
	"procsync/pkg/testutil/containers"
)

type PostgresStoresSuite struct {
	suite.Suite
	pg        *containers.PostgresContainer
	processes *store.PostgresProcesses
	snapshots *store.PostgresSnapshots
	events    *store.PostgresEvents
	parties   *store.PostgresParties
}

func TestPostgresStoresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoresSuite))
}

func (s *PostgresStoresSuite) SetupSuite() {
	s.pg = containers.GetManager().Postgres(s.T())
	s.processes = store.NewPostgresProcesses(s.pg.Pool)
	s.snapshots = store.NewPostgresSnapshots(s.pg.Pool)
	s.events = store.NewPostgresEvents(s.pg.Pool)
	s.parties = store.NewPostgresParties(s.pg.Pool)
}

func (s *PostgresStoresSuite) SetupTest() {
	err := s.pg.TruncateTables(context.Background(), "processes", "raw_snapshots", "events", "parties")
	s.Require().NoError(err)
}

func (s *PostgresStoresSuite) createProcess(number string) *models.Process {
	proc, err := models.NewProcess(number)
	s.Require().NoError(err)
	s.Require().NoError(s.processes.Create(context.Background(), proc))
	return proc
}

func (s *PostgresStoresSuite) TestProcessRoundTrip() {
	ctx := context.Background()
	proc := s.createProcess("0001")

	proc.Tier = "1"
	proc.Fresh = true
	proc.LastUpdatedAt = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	proc.Class = &reference.Ref{Code: "279", Name: "Procedimento Comum"}
	proc.SecrecyLevel = 2
	proc.LitigationValue = "1500.00"
	proc.Subjects = []reference.Ref{{Code: "10433", Name: "Responsabilidade Civil"}}
	proc.Linked = []models.LinkedProcess{{Number: "0000", Link: "DP"}}
	s.Require().NoError(s.processes.Save(ctx, proc))

	found, err := s.processes.Find(ctx, "0001")
	s.Require().NoError(err)
	s.Equal("1", found.Tier)
	s.True(found.Fresh)
	s.True(found.LastUpdatedAt.Equal(proc.LastUpdatedAt))
	s.Require().NotNil(found.Class)
	s.Equal("Procedimento Comum", found.Class.Name)
	s.Nil(found.Locality)
	s.Equal(2, found.SecrecyLevel)
	s.Equal(proc.Subjects, found.Subjects)
	s.Equal(proc.Linked, found.Linked)
}

func (s *PostgresStoresSuite) TestProcessSentinels() {
	ctx := context.Background()
	s.createProcess("0001")

	dup, err := models.NewProcess("0001")
	s.Require().NoError(err)
	s.Require().ErrorIs(s.processes.Create(ctx, dup), sentinel.ErrConflict)

	_, err = s.processes.Find(ctx, "ghost")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	ghost, err := models.NewProcess("ghost")
	s.Require().NoError(err)
	s.Require().ErrorIs(s.processes.Save(ctx, ghost), sentinel.ErrNotFound)
	s.Require().ErrorIs(s.processes.SetUpdating(ctx, "ghost", true), sentinel.ErrNotFound)
}

func (s *PostgresStoresSuite) TestListStaleHonorsLimit() {
	ctx := context.Background()
	s.createProcess("0001")
	s.createProcess("0002")
	fresh := s.createProcess("0003")
	fresh.Fresh = true
	s.Require().NoError(s.processes.Save(ctx, fresh))

	stale, err := s.processes.ListStale(ctx, 0)
	s.Require().NoError(err)
	s.Equal([]string{"0001", "0002"}, stale)

	stale, err = s.processes.ListStale(ctx, 1)
	s.Require().NoError(err)
	s.Equal([]string{"0001"}, stale)
}

func (s *PostgresStoresSuite) TestSnapshotUpsert() {
	ctx := context.Background()
	s.createProcess("0001")

	first := &models.RawSnapshot{
		ProcessNumber: "0001",
		Payload:       eproc.RawProcess{BasicData: eproc.RawBasicData{ClassCode: "279"}},
		FetchedAt:     time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	s.Require().NoError(s.snapshots.Save(ctx, first))

	second := &models.RawSnapshot{
		ProcessNumber: "0001",
		Payload:       eproc.RawProcess{BasicData: eproc.RawBasicData{ClassCode: "280"}},
		FetchedAt:     first.FetchedAt.Add(time.Hour),
	}
	s.Require().NoError(s.snapshots.Save(ctx, second))

	found, err := s.snapshots.Find(ctx, "0001")
	s.Require().NoError(err)
	s.Equal("280", found.Payload.BasicData.ClassCode)
	s.True(found.FetchedAt.Equal(second.FetchedAt))
}

func (s *PostgresStoresSuite) TestEventAppendIsIdempotent() {
	ctx := context.Background()
	s.createProcess("0001")

	event := &models.Event{
		ProcessNumber: "0001",
		MovementID:    "m1",
		ProtocolAt:    time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC),
		Description:   "Distribuido",
		Documents: []models.EventDocument{
			{DocumentID: "d1", TypeCode: "42", TypeName: "Peticao Inicial"},
		},
		PublicDefender: true,
	}
	s.Require().NoError(s.events.Append(ctx, event))
	s.Require().NoError(s.events.Append(ctx, event))

	exists, err := s.events.Exists(ctx, "0001", "m1")
	s.Require().NoError(err)
	s.True(exists)

	listed, err := s.events.ListByProcess(ctx, "0001")
	s.Require().NoError(err)
	s.Require().Len(listed, 1)
	s.Equal("Distribuido", listed[0].Description)
	s.True(listed[0].PublicDefender)
	s.Require().Len(listed[0].Documents, 1)
	s.Equal("Peticao Inicial", listed[0].Documents[0].TypeName)
}

func (s *PostgresStoresSuite) TestEventsOrderedByInsertion() {
	ctx := context.Background()
	s.createProcess("0001")

	for _, id := range []string{"m3", "m1", "m2"} {
		s.Require().NoError(s.events.Append(ctx, &models.Event{
			ProcessNumber: "0001",
			MovementID:    id,
			ProtocolAt:    time.Now().UTC(),
		}))
	}

	listed, err := s.events.ListByProcess(ctx, "0001")
	s.Require().NoError(err)
	s.Require().Len(listed, 3)
	s.Equal("m3", listed[0].MovementID)
	s.Equal("m2", listed[2].MovementID)
}

func (s *PostgresStoresSuite) TestPartyReplaceCycle() {
	ctx := context.Background()
	s.createProcess("0001")
	s.createProcess("0002")

	birth := time.Date(1950, 3, 20, 0, 0, 0, 0, time.UTC)
	s.Require().NoError(s.parties.Add(ctx, &models.Party{
		ProcessNumber: "0001",
		Pole:          "AT",
		Person: models.Person{
			Name:      "Maria da Silva",
			BirthDate: &birth,
			Addresses: []models.Address{{City: "Curitiba", State: "PR"}},
		},
		Lawyers: []models.Lawyer{{Name: "Dr. Advogado"}},
	}))
	s.Require().NoError(s.parties.Add(ctx, &models.Party{ProcessNumber: "0002", Pole: "PA"}))

	listed, err := s.parties.ListByProcess(ctx, "0001")
	s.Require().NoError(err)
	s.Require().Len(listed, 1)
	s.Equal("Maria da Silva", listed[0].Person.Name)
	s.Require().NotNil(listed[0].Person.BirthDate)
	s.True(listed[0].Person.BirthDate.Equal(birth))
	s.Equal("Curitiba", listed[0].Person.Addresses[0].City)
	s.Equal("Dr. Advogado", listed[0].Lawyers[0].Name)

	s.Require().NoError(s.parties.DeleteByProcess(ctx, "0001"))

	gone, err := s.parties.ListByProcess(ctx, "0001")
	s.Require().NoError(err)
	s.Empty(gone)

	kept, err := s.parties.ListByProcess(ctx, "0002")
	s.Require().NoError(err)
	s.Len(kept, 1)
}
