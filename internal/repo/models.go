package repo

import (
	"strings"

	"github.com/google/uuid"
)

// Perfis de acesso do colaborador.
const (
	PerfilAdmin   = "admin"
	PerfilEditor  = "editor"
	PerfilUsuario = "usuario"
)

// Funções hierárquicas. Independentes do perfil: um usuário comum
// pode ser líder de letra ou supervisor de equipe.
const (
	FuncaoLider      = "lider"
	FuncaoSupervisor = "supervisor"
)

// Usuario representa um colaborador no quadro organizacional.
type Usuario struct {
	Matricula int64      `json:"matricula"`
	Nome      string     `json:"nome"`
	Email     string     `json:"email"`
	SenhaHash string     `json:"-"`
	Perfil    string     `json:"perfil"`
	Funcao    *string    `json:"funcao,omitempty"`
	EquipeID  *uuid.UUID `json:"equipe_id,omitempty"`
	LetraID   *uuid.UUID `json:"letra_id,omitempty"`
	Contrato  *string    `json:"contrato,omitempty"`
	Ativo     bool       `json:"ativo"`
}

// TemFuncao indica se o colaborador exerce a função informada.
func (u Usuario) TemFuncao(funcao string) bool {
	return u.Funcao != nil && strings.EqualFold(*u.Funcao, funcao)
}

// Equipe agrupa colaboradores sob um supervisor opcional.
type Equipe struct {
	ID                  uuid.UUID `json:"id"`
	Nome                string    `json:"nome"`
	SupervisorMatricula *int64    `json:"supervisor_matricula,omitempty"`
}

// Letra é o agrupamento por turno/unidade, liderado por um líder opcional.
type Letra struct {
	ID             uuid.UUID `json:"id"`
	Nome           string    `json:"nome"`
	LiderMatricula *int64    `json:"lider_matricula,omitempty"`
}

// Contrato identifica um contrato ativo na operação.
type Contrato struct {
	Codigo    string `json:"codigo"`
	Descricao string `json:"descricao"`
}
