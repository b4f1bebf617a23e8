// Package comite gerencia os comitês de boas práticas e suas regras
// de elegibilidade de membros.
package comite

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound             = errors.New("comitê não encontrado")
	ErrNomeObrigatorio      = errors.New("nome do comitê é obrigatório")
	ErrTipoInvalido         = errors.New("tipo de comitê inválido")
	ErrContratoObrigatorio  = errors.New("informe o contrato do comitê local")
	ErrContratoNaoPermitido = errors.New("comitê corporativo não possui contrato")
	ErrContratoInexistente  = errors.New("contrato informado não existe")
	ErrSemMembros           = errors.New("selecione pelo menos um membro")
	ErrCorporativoExistente = errors.New("já existe um comitê corporativo")
	ErrLocalExistente       = errors.New("já existe um comitê local para este contrato")
)

// ErrMembroInvalido indica membro inexistente ou inativo.
type ErrMembroInvalido struct {
	Matricula int64
}

func (e *ErrMembroInvalido) Error() string {
	return "membro inexistente ou inativo"
}

// ErrMembroForaContrato indica membro lotado em outro contrato.
type ErrMembroForaContrato struct {
	Matricula int64
}

func (e *ErrMembroForaContrato) Error() string {
	return "membro pertence a outro contrato"
}

// Tipos de comitê aceitos.
const (
	TipoLocal       = "local"
	TipoCorporativo = "corporativo"
)

// NormalizeTipo padroniza o tipo em letras minúsculas.
func NormalizeTipo(tipo string) string {
	return strings.ToLower(strings.TrimSpace(tipo))
}

// IsValidTipo indica se o tipo é aceito.
func IsValidTipo(tipo string) bool {
	switch NormalizeTipo(tipo) {
	case TipoLocal, TipoCorporativo:
		return true
	}
	return false
}

// Membro é um colaborador integrante do comitê.
type Membro struct {
	Matricula int64  `json:"matricula"`
	Nome      string `json:"nome"`
}

// Comite representa um comitê de boas práticas.
type Comite struct {
	ID       uuid.UUID `json:"id"`
	Nome     string    `json:"nome"`
	Tipo     string    `json:"tipo"`
	Contrato *string   `json:"contrato,omitempty"`
	Membros  []Membro  `json:"membros,omitempty"`
	CriadoEm time.Time `json:"criado_em"`
}

// Input encapsula os campos de criação/edição de comitê.
type Input struct {
	Nome       string
	Tipo       string
	Contrato   *string
	Matriculas []int64
}

// Filtro delimita listagens de comitês.
type Filtro struct {
	Busca  string
	Tipo   string
	Limit  int
	Offset int
}
