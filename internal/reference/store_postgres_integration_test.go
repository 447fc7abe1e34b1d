//go:build integration

package reference_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"procsync/internal/reference"
	"procsync/pkg/platform/sentinel"
	"procsync/pkg/testutil/containers"
)

type PostgresResolverSuite struct {
	suite.Suite
	pg   *containers.PostgresContainer
	refs *reference.Postgres
}

func TestPostgresResolverSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresResolverSuite))
}

func (s *PostgresResolverSuite) SetupSuite() {
	s.pg = containers.GetManager().Postgres(s.T())
	s.refs = reference.NewPostgres(s.pg.Pool)
}

func (s *PostgresResolverSuite) SetupTest() {
	ctx := context.Background()
	err := s.pg.TruncateTables(ctx, "classes", "localities", "judging_bodies", "subjects", "document_types")
	s.Require().NoError(err)

	for _, stmt := range []string{
		`INSERT INTO classes (code, name) VALUES ('279', 'Procedimento Comum')`,
		`INSERT INTO localities (code, name) VALUES ('8101', 'Curitiba')`,
		`INSERT INTO judging_bodies (code, name) VALUES ('990', '1a Vara Federal')`,
		`INSERT INTO subjects (code, name) VALUES ('10433', 'Responsabilidade Civil')`,
		`INSERT INTO document_types (tier, code, name) VALUES ('1', 42, 'Peticao Inicial')`,
	} {
		_, err := s.pg.Pool.Exec(ctx, stmt)
		s.Require().NoError(err)
	}
}

func (s *PostgresResolverSuite) TestResolvesSeededCodes() {
	ctx := context.Background()

	class, err := s.refs.Class(ctx, "279")
	s.Require().NoError(err)
	s.Equal(reference.Ref{Code: "279", Name: "Procedimento Comum"}, class)

	locality, err := s.refs.Locality(ctx, "8101")
	s.Require().NoError(err)
	s.Equal("Curitiba", locality.Name)

	body, err := s.refs.JudgingBody(ctx, "990")
	s.Require().NoError(err)
	s.Equal("1a Vara Federal", body.Name)

	subject, err := s.refs.Subject(ctx, "10433")
	s.Require().NoError(err)
	s.Equal("Responsabilidade Civil", subject.Name)

	doc, err := s.refs.DocumentType(ctx, "1", 42)
	s.Require().NoError(err)
	s.Equal("Peticao Inicial", doc.Name)
}

func (s *PostgresResolverSuite) TestUnknownCodesReturnNotFound() {
	ctx := context.Background()

	_, err := s.refs.Class(ctx, "1")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.refs.DocumentType(ctx, "2", 42)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
