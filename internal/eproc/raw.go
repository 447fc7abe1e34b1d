package eproc

import (
	"encoding/json"
	"fmt"
)

// RawProcess is the verbatim payload returned by the registry's full-process
// query. Field names follow the registry's wire keys exactly; extractors are
// the only consumers and operate on this typed form rather than ad-hoc maps.
type RawProcess struct {
	BasicData RawBasicData  `json:"dadosBasicos"`
	Movements []RawMovement `json:"movimento"`
	Documents []RawDocument `json:"documento"`
}

// RawBasicData carries the coded header fields, the subject and linked-process
// arrays, and the pole/party tree.
//
// SecrecyLevel and LitigationValue are pointers because they are required:
// header extraction fails when either key is absent. Linked stays nil when the
// processoVinculado key is absent, which header extraction distinguishes from
// an empty array.
type RawBasicData struct {
	ClassCode       string             `json:"_classeProcessual"`
	LocalityCode    string             `json:"_codigoLocalidade"`
	JudgingBodyCode string             `json:"_codigoOrgaoJulgador"`
	SecrecyLevel    *int               `json:"_nivelSigilo"`
	LitigationValue *string            `json:"valorCausa"`
	Subjects        []RawSubject       `json:"assunto"`
	Linked          []RawLinkedProcess `json:"processoVinculado"`
	Poles           []RawPole          `json:"polo"`
}

type RawSubject struct {
	NationalCode string `json:"codigoNacional"`
}

type RawLinkedProcess struct {
	Number string `json:"_numeroProcesso"`
	Link   string `json:"_vinculo"`
}

// RawMovement is one procedural movement. DateTime is the registry's fixed
// numeric format (yyyymmddhhmmss, no timezone).
type RawMovement struct {
	ID           string   `json:"_identificadorMovimento"`
	DateTime     string   `json:"_dataHora"`
	SecrecyLevel int      `json:"_nivelSigilo"`
	LocalType    string   `json:"_identificadorMovimentoLocal"`
	UserID       string   `json:"_identificadorUsuarioMovimentacao"`
	Description  string   `json:"movimentoLocal"`
	DocumentIDs  []string `json:"idDocumentoVinculado"`
}

type RawDocument struct {
	ID       string `json:"_idDocumento"`
	TypeCode string `json:"_tipoDocumento"`
	MimeType string `json:"_mimetype"`
}

type RawPole struct {
	Pole    string     `json:"_polo"`
	Parties []RawParty `json:"parte"`
}

type RawParty struct {
	Person  RawPerson   `json:"pessoa"`
	Lawyers []RawLawyer `json:"advogado"`
}

// RawPerson dates use the registry's fixed numeric format (yyyymmdd) and are
// optional.
type RawPerson struct {
	Type            string       `json:"_tipoPessoa"`
	PrimaryDocument string       `json:"_numeroDocumentoPrincipal"`
	Name            string       `json:"_nome"`
	FatherName      string       `json:"_nomeGenitor"`
	MotherName      string       `json:"_nomeGenitora"`
	BirthDate       string       `json:"_dataNascimento"`
	DeathDate       string       `json:"_dataObito"`
	Sex             string       `json:"_sexo"`
	BirthCity       string       `json:"_cidadeNatural"`
	BirthState      string       `json:"_estadoNatural"`
	Nationality     string       `json:"_nacionalidade"`
	Addresses       []RawAddress `json:"endereco"`
}

type RawAddress struct {
	PostalCode string `json:"_cep"`
	Street     string `json:"logradouro"`
	Number     string `json:"numero"`
	Complement string `json:"complemento"`
	District   string `json:"bairro"`
	City       string `json:"cidade"`
	State      string `json:"estado"`
	Country    string `json:"pais"`
}

type RawLawyer struct {
	Name               string `json:"_nome"`
	PrimaryDocument    string `json:"_numeroDocumentoPrincipal"`
	IdentityNumber     string `json:"_identidadePrincipal"`
	RepresentativeType string `json:"_tipoRepresentante"`
}

// DecodeRaw parses a registry payload into its typed form.
func DecodeRaw(data []byte) (*RawProcess, error) {
	var raw RawProcess
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode raw process payload: %w", err)
	}
	return &raw, nil
}
