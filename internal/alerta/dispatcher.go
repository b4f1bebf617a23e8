package alerta

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// NotificacaoStore é o subconjunto de persistência usado pelo despacho.
type NotificacaoStore interface {
	CreateNotificacao(ctx context.Context, notif Notificacao) (Notificacao, error)
}

// Dispatcher persiste rascunhos de notificação e os encaminha aos canais.
// Cada rascunho é independente: falha em um não bloqueia nem desfaz os
// demais. A persistência é a fronteira de durabilidade; a entrega pelos
// canais é melhor esforço.
type Dispatcher struct {
	store     NotificacaoStore
	notifiers []Notifier
	logger    zerolog.Logger
}

// NewDispatcher cria o despachante. Notifiers nulos são ignorados.
func NewDispatcher(store NotificacaoStore, logger zerolog.Logger, notifiers ...Notifier) *Dispatcher {
	ativos := make([]Notifier, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			ativos = append(ativos, n)
		}
	}
	return &Dispatcher{store: store, notifiers: ativos, logger: logger}
}

// Dispatch insere uma notificação por rascunho e aciona os canais.
// Devolve quantas notificações foram persistidas. Não há transação entre
// destinatários: reexecutar o mesmo alerta pode duplicar notificações, por
// isso quem chama guarda a flag notificado do alerta.
func (d *Dispatcher) Dispatch(ctx context.Context, alertaID uuid.UUID, rascunhos []Rascunho) int {
	inseridas := 0

	for _, rascunho := range rascunhos {
		notif := Notificacao{
			AlertaID:     alertaID,
			Destinatario: rascunho.Destinatario,
			Papel:        rascunho.Papel,
			Nome:         rascunho.Nome,
			Estado:       rascunho.Estado,
			Observacao:   rascunho.Observacao,
			RegistradoEm: rascunho.RegistradoEm,
		}

		if _, err := d.store.CreateNotificacao(ctx, notif); err != nil {
			d.logger.Error().Err(err).
				Str("alerta", alertaID.String()).
				Int64("destinatario", rascunho.Destinatario).
				Msg("alerta: falha ao persistir notificação")
			continue
		}
		inseridas++

		msg := Mensagem{
			Destinatario: rascunho.Destinatario,
			Papel:        rascunho.Papel,
			Titulo:       fmt.Sprintf("Emociograma: %s", rascunho.Nome),
			Texto:        fmt.Sprintf("%s relatou estado %q. %s", rascunho.Nome, rascunho.Estado, rascunho.Observacao),
			Estado:       rascunho.Estado,
		}

		for _, notifier := range d.notifiers {
			if err := notifier.Notify(ctx, msg); err != nil {
				d.logger.Warn().Err(err).
					Str("canal", notifier.Nome()).
					Int64("destinatario", rascunho.Destinatario).
					Msg("alerta: falha ao entregar no canal")
			}
		}
	}

	return inseridas
}
