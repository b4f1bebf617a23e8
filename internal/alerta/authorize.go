package alerta

import (
	"github.com/systemmax/sst/internal/repo"
)

// Decisao é o resultado da escada de autorização.
type Decisao struct {
	Autorizado bool
	Motivo     string
}

func autorizado() Decisao {
	return Decisao{Autorizado: true}
}

func negado(motivo string) Decisao {
	return Decisao{Autorizado: false, Motivo: motivo}
}

// degrau é um par (predicado, decisão). A escada é avaliada de cima para
// baixo e o primeiro degrau aplicável decide.
type degrau struct {
	aplica func(requerente, alvo repo.Usuario) bool
	decide func(requerente, alvo repo.Usuario) Decisao
}

var escadaTratativa = []degrau{
	{
		// admin e editor atuam sobre qualquer colaborador
		aplica: func(requerente, _ repo.Usuario) bool {
			return requerente.Perfil == repo.PerfilAdmin || requerente.Perfil == repo.PerfilEditor
		},
		decide: func(_, _ repo.Usuario) Decisao {
			return autorizado()
		},
	},
	{
		// líder atua apenas dentro da própria letra
		aplica: func(requerente, _ repo.Usuario) bool {
			return requerente.TemFuncao(repo.FuncaoLider)
		},
		decide: func(requerente, alvo repo.Usuario) Decisao {
			if requerente.LetraID != nil && alvo.LetraID != nil && *requerente.LetraID == *alvo.LetraID {
				return autorizado()
			}
			return negado("líder sem escopo: colaborador de outra letra")
		},
	},
	{
		// supervisor atua apenas dentro da própria equipe
		aplica: func(requerente, _ repo.Usuario) bool {
			return requerente.TemFuncao(repo.FuncaoSupervisor)
		},
		decide: func(requerente, alvo repo.Usuario) Decisao {
			if requerente.EquipeID != nil && alvo.EquipeID != nil && *requerente.EquipeID == *alvo.EquipeID {
				return autorizado()
			}
			return negado("supervisor sem escopo: colaborador de outra equipe")
		},
	},
}

// AutorizarTratativa decide se o requerente pode registrar tratativa sobre
// o alerta de um colaborador. Os degraus são avaliados em ordem fixa e o
// primeiro aplicável vence; não há combinação de regras.
func AutorizarTratativa(requerente, alvo repo.Usuario) Decisao {
	for _, d := range escadaTratativa {
		if d.aplica(requerente, alvo) {
			return d.decide(requerente, alvo)
		}
	}
	return negado("perfil sem permissão para tratativa")
}
