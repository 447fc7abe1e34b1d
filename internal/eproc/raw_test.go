package eproc

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type DecodeRawSuite struct {
	suite.Suite
}

func TestDecodeRawSuite(t *testing.T) {
	suite.Run(t, new(DecodeRawSuite))
}

func (s *DecodeRawSuite) TestDecodesWireKeys() {
	raw, err := DecodeRaw([]byte(`{
		"dadosBasicos": {
			"_classeProcessual": "279",
			"_codigoLocalidade": "8101",
			"_codigoOrgaoJulgador": "990",
			"_nivelSigilo": 2,
			"valorCausa": "1500.00",
			"assunto": [{"codigoNacional": "10433"}],
			"polo": [{
				"_polo": "AT",
				"parte": [{
					"pessoa": {
						"_nome": "Maria da Silva",
						"_dataNascimento": "19500320",
						"endereco": [{"_cep": "80000000", "cidade": "Curitiba"}]
					},
					"advogado": [{"_nome": "Dr. Advogado"}]
				}]
			}]
		},
		"movimento": [{
			"_identificadorMovimento": "m1",
			"_dataHora": "20260115103000",
			"_identificadorUsuarioMovimentacao": "DP9999",
			"movimentoLocal": "Distribuido",
			"idDocumentoVinculado": ["d1"]
		}],
		"documento": [{
			"_idDocumento": "d1",
			"_tipoDocumento": "42",
			"_mimetype": "application/pdf"
		}]
	}`))
	s.Require().NoError(err)

	s.Equal("279", raw.BasicData.ClassCode)
	s.Require().NotNil(raw.BasicData.SecrecyLevel)
	s.Equal(2, *raw.BasicData.SecrecyLevel)
	s.Require().NotNil(raw.BasicData.LitigationValue)
	s.Equal("1500.00", *raw.BasicData.LitigationValue)
	s.Require().Len(raw.BasicData.Subjects, 1)
	s.Equal("10433", raw.BasicData.Subjects[0].NationalCode)

	s.Require().Len(raw.BasicData.Poles, 1)
	s.Equal("AT", raw.BasicData.Poles[0].Pole)
	s.Require().Len(raw.BasicData.Poles[0].Parties, 1)
	s.Equal("Maria da Silva", raw.BasicData.Poles[0].Parties[0].Person.Name)
	s.Equal("Curitiba", raw.BasicData.Poles[0].Parties[0].Person.Addresses[0].City)
	s.Equal("Dr. Advogado", raw.BasicData.Poles[0].Parties[0].Lawyers[0].Name)

	s.Require().Len(raw.Movements, 1)
	s.Equal("m1", raw.Movements[0].ID)
	s.Equal("DP9999", raw.Movements[0].UserID)
	s.Equal([]string{"d1"}, raw.Movements[0].DocumentIDs)

	s.Require().Len(raw.Documents, 1)
	s.Equal("42", raw.Documents[0].TypeCode)
}

func (s *DecodeRawSuite) TestMissingRequiredKeysDecodeToNil() {
	raw, err := DecodeRaw([]byte(`{"dadosBasicos": {}}`))
	s.Require().NoError(err)
	s.Nil(raw.BasicData.SecrecyLevel)
	s.Nil(raw.BasicData.LitigationValue)
}

func (s *DecodeRawSuite) TestLinkedKeyAbsenceIsDistinguishable() {
	s.Run("absent key decodes to nil slice", func() {
		raw, err := DecodeRaw([]byte(`{"dadosBasicos": {}}`))
		s.Require().NoError(err)
		s.Nil(raw.BasicData.Linked)
	})

	s.Run("present empty key decodes to empty slice", func() {
		raw, err := DecodeRaw([]byte(`{"dadosBasicos": {"processoVinculado": []}}`))
		s.Require().NoError(err)
		s.NotNil(raw.BasicData.Linked)
		s.Empty(raw.BasicData.Linked)
	})
}

func (s *DecodeRawSuite) TestRejectsMalformedPayload() {
	_, err := DecodeRaw([]byte(`{"dadosBasicos": [`))
	s.Require().Error(err)
}
