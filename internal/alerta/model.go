// Package alerta implementa o fluxo de escalonamento do emociograma:
// decide quando um registro vira alerta, quem deve ser notificado e
// quem pode registrar tratativas.
package alerta

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("alerta não encontrado")
	ErrJaResolvido        = errors.New("alerta já resolvido")
	ErrNotifNaoEncontrada = errors.New("notificação não encontrada")
)

// Estados emocionais aceitos no emociograma.
const (
	EstadoBem     = "bem"
	EstadoRegular = "regular"
	EstadoPessimo = "pessimo"
)

// Papéis de destinatário de uma notificação.
const (
	PapelLider      = "lider"
	PapelSupervisor = "supervisor"
)

var estadosValidos = map[string]struct{}{
	EstadoBem:     {},
	EstadoRegular: {},
	EstadoPessimo: {},
}

// NormalizeEstado padroniza o estado em letras minúsculas.
func NormalizeEstado(estado string) string {
	return strings.ToLower(strings.TrimSpace(estado))
}

// IsValidEstado indica se o estado é aceito.
func IsValidEstado(estado string) bool {
	_, ok := estadosValidos[NormalizeEstado(estado)]
	return ok
}

// DeveEscalar indica se o estado dispara a criação de alerta.
// Apenas regular e péssimo escalonam; os demais não geram registro algum.
func DeveEscalar(estado string) bool {
	switch NormalizeEstado(estado) {
	case EstadoRegular, EstadoPessimo:
		return true
	}
	return false
}

// Registro é uma entrada do emociograma, escalonada ou não.
type Registro struct {
	ID         uuid.UUID `json:"id"`
	Matricula  int64     `json:"matricula"`
	Nome       string    `json:"nome"`
	Estado     string    `json:"estado"`
	Observacao string    `json:"observacao,omitempty"`
	CriadoEm   time.Time `json:"criado_em"`
}

// Alerta representa um registro que exige escalonamento.
// Nome, estado e observação são snapshots do momento da criação:
// edições posteriores no colaborador não alteram o alerta.
type Alerta struct {
	ID                  uuid.UUID  `json:"id"`
	Matricula           int64      `json:"matricula"`
	Nome                string     `json:"nome"`
	Estado              string     `json:"estado"`
	Observacao          string     `json:"observacao,omitempty"`
	LiderMatricula      *int64     `json:"lider_matricula,omitempty"`
	SupervisorMatricula *int64     `json:"supervisor_matricula,omitempty"`
	Notificado          bool       `json:"notificado"`
	Resolvido           bool       `json:"resolvido"`
	ResolvidoEm         *time.Time `json:"resolvido_em,omitempty"`
	CriadoEm            time.Time  `json:"criado_em"`
}

// Notificacao registra que um destinatário foi informado de um alerta.
// Imutável após criada, exceto pela flag de leitura.
type Notificacao struct {
	ID           uuid.UUID `json:"id"`
	AlertaID     uuid.UUID `json:"alerta_id"`
	Destinatario int64     `json:"destinatario"`
	Papel        string    `json:"papel"`
	Nome         string    `json:"nome"`
	Estado       string    `json:"estado"`
	Observacao   string    `json:"observacao,omitempty"`
	RegistradoEm time.Time `json:"registrado_em"`
	Lida         bool      `json:"lida"`
	CriadoEm     time.Time `json:"criado_em"`
}

// Tratativa documenta a ação tomada por um responsável sobre um alerta.
type Tratativa struct {
	ID        uuid.UUID `json:"id"`
	AlertaID  uuid.UUID `json:"alerta_id"`
	Autor     int64     `json:"autor"`
	Descricao string    `json:"descricao"`
	CriadoEm  time.Time `json:"criado_em"`
}

// Filtro delimita listagens de alertas.
type Filtro struct {
	Estado    string
	Resolvido *bool
	Limit     int
	Offset    int
}
