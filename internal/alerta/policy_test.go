package alerta

import (
	"testing"
	"time"

	"github.com/systemmax/sst/internal/org"
	"github.com/systemmax/sst/internal/repo"
)

func TestDeveEscalar(t *testing.T) {
	casos := []struct {
		estado string
		espera bool
	}{
		{"bem", false},
		{"regular", true},
		{"pessimo", true},
		{"PESSIMO", true},
		{"  Regular ", true},
		{"otimo", false},
		{"", false},
	}

	for _, c := range casos {
		if got := DeveEscalar(c.estado); got != c.espera {
			t.Errorf("DeveEscalar(%q) = %v, esperava %v", c.estado, got, c.espera)
		}
	}
}

func TestMontarDestinatariosLiderESupervisor(t *testing.T) {
	agora := time.Now()
	resp := org.Responsaveis{
		Lider:      &repo.Usuario{Matricula: 2002, Nome: "Carlos"},
		Supervisor: &repo.Usuario{Matricula: 3003, Nome: "Bea"},
	}

	rascunhos := MontarDestinatarios("Ana", EstadoPessimo, "plantão dobrado", agora, resp)
	if len(rascunhos) != 2 {
		t.Fatalf("esperava 2 rascunhos, obteve %d", len(rascunhos))
	}

	if rascunhos[0].Destinatario != 2002 || rascunhos[0].Papel != PapelLider {
		t.Errorf("primeiro rascunho deve ser do líder, obteve %+v", rascunhos[0])
	}
	if rascunhos[1].Destinatario != 3003 || rascunhos[1].Papel != PapelSupervisor {
		t.Errorf("segundo rascunho deve ser do supervisor, obteve %+v", rascunhos[1])
	}

	for _, r := range rascunhos {
		if r.Nome != "Ana" || r.Estado != EstadoPessimo || r.Observacao != "plantão dobrado" {
			t.Errorf("rascunho sem snapshot completo: %+v", r)
		}
		if !r.RegistradoEm.Equal(agora) {
			t.Errorf("rascunho deve carregar o momento do registro, obteve %v", r.RegistradoEm)
		}
	}
}

func TestMontarDestinatariosDedupMesmaPessoa(t *testing.T) {
	mesma := &repo.Usuario{Matricula: 2002, Nome: "Carlos"}
	resp := org.Responsaveis{Lider: mesma, Supervisor: mesma}

	rascunhos := MontarDestinatarios("Ana", EstadoRegular, "", time.Now(), resp)
	if len(rascunhos) != 1 {
		t.Fatalf("líder e supervisor com a mesma matrícula devem gerar 1 rascunho, obteve %d", len(rascunhos))
	}
	if rascunhos[0].Papel != PapelLider {
		t.Errorf("no empate o papel registrado é o de líder, obteve %q", rascunhos[0].Papel)
	}
}

func TestMontarDestinatariosApenasSupervisor(t *testing.T) {
	resp := org.Responsaveis{
		Supervisor: &repo.Usuario{Matricula: 3003, Nome: "Bea"},
	}

	rascunhos := MontarDestinatarios("Ana", EstadoRegular, "", time.Now(), resp)
	if len(rascunhos) != 1 {
		t.Fatalf("esperava 1 rascunho, obteve %d", len(rascunhos))
	}
	if rascunhos[0].Destinatario != 3003 || rascunhos[0].Papel != PapelSupervisor {
		t.Errorf("rascunho inesperado: %+v", rascunhos[0])
	}
}

func TestMontarDestinatariosSemResponsaveis(t *testing.T) {
	rascunhos := MontarDestinatarios("Ana", EstadoPessimo, "", time.Now(), org.Responsaveis{})
	if len(rascunhos) != 0 {
		t.Fatalf("sem responsáveis não há rascunho, obteve %d", len(rascunhos))
	}
}
