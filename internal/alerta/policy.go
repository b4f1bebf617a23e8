package alerta

import (
	"time"

	"github.com/systemmax/sst/internal/org"
)

// Rascunho é uma notificação ainda não persistida, com snapshot completo
// do registro que a originou.
type Rascunho struct {
	Destinatario int64
	Papel        string
	Nome         string
	Estado       string
	Observacao   string
	RegistradoEm time.Time
}

// MontarDestinatarios produz zero, um ou dois rascunhos a partir dos
// responsáveis resolvidos. O supervisor é descartado quando tem a mesma
// matrícula do líder: nunca se notifica a mesma pessoa duas vezes pelo
// mesmo alerta.
func MontarDestinatarios(nome, estado, observacao string, registradoEm time.Time, resp org.Responsaveis) []Rascunho {
	var rascunhos []Rascunho

	if resp.Lider != nil {
		rascunhos = append(rascunhos, Rascunho{
			Destinatario: resp.Lider.Matricula,
			Papel:        PapelLider,
			Nome:         nome,
			Estado:       estado,
			Observacao:   observacao,
			RegistradoEm: registradoEm,
		})
	}

	if resp.Supervisor != nil {
		if resp.Lider != nil && resp.Supervisor.Matricula == resp.Lider.Matricula {
			return rascunhos
		}
		rascunhos = append(rascunhos, Rascunho{
			Destinatario: resp.Supervisor.Matricula,
			Papel:        PapelSupervisor,
			Nome:         nome,
			Estado:       estado,
			Observacao:   observacao,
			RegistradoEm: registradoEm,
		})
	}

	return rascunhos
}
