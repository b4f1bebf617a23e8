package alerta

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/systemmax/sst/internal/org"
	"github.com/systemmax/sst/internal/repo"
)

var (
	ErrEstadoInvalido     = errors.New("estado emocional inválido")
	ErrDescricaoVazia     = errors.New("descrição da tratativa é obrigatória")
	ErrColaboradorInativo = errors.New("colaborador inativo")
)

// ErrNaoAutorizado carrega o motivo da negativa da escada de autorização.
type ErrNaoAutorizado struct {
	Motivo string
}

func (e *ErrNaoAutorizado) Error() string {
	return e.Motivo
}

// Store descreve a persistência usada pelo serviço.
type Store interface {
	NotificacaoStore
	CreateRegistro(ctx context.Context, registro Registro) (Registro, error)
	CreateAlerta(ctx context.Context, alerta Alerta) (Alerta, error)
	GetAlerta(ctx context.Context, id uuid.UUID) (Alerta, error)
	ListAlertas(ctx context.Context, filtro Filtro) ([]Alerta, error)
	SetNotificado(ctx context.Context, id uuid.UUID) error
	MarcarResolvido(ctx context.Context, id uuid.UUID) (Alerta, error)
	ListNotificacoes(ctx context.Context, destinatario int64) ([]Notificacao, error)
	MarcarLida(ctx context.Context, id uuid.UUID, destinatario int64) error
	CreateTratativa(ctx context.Context, tratativa Tratativa) (Tratativa, error)
	ListTratativas(ctx context.Context, alertaID uuid.UUID) ([]Tratativa, error)
}

// Hierarquia resolve líder e supervisor para um colaborador.
type Hierarquia interface {
	ResolveResponsaveis(ctx context.Context, equipeID, letraID *uuid.UUID) (org.Responsaveis, error)
}

// Diretorio consulta colaboradores no quadro de identidade.
type Diretorio interface {
	GetUsuario(ctx context.Context, matricula int64) (repo.Usuario, error)
}

// Service orquestra o escalonamento: registro, resolução de responsáveis,
// criação de alerta e despacho de notificações, nessa ordem.
type Service struct {
	store      Store
	hierarquia Hierarquia
	diretorio  Diretorio
	dispatcher *Dispatcher
	logger     zerolog.Logger
}

// NewService cria o serviço de alertas.
func NewService(store Store, hierarquia Hierarquia, diretorio Diretorio, dispatcher *Dispatcher, logger zerolog.Logger) *Service {
	return &Service{
		store:      store,
		hierarquia: hierarquia,
		diretorio:  diretorio,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegistrarEstado grava a entrada do emociograma e, quando o estado exige,
// escalona dentro da mesma requisição. Estados fora do conjunto restrito
// não geram alerta nem notificação.
func (s *Service) RegistrarEstado(ctx context.Context, matricula int64, estado, observacao string) (Registro, *Alerta, error) {
	estado = NormalizeEstado(estado)
	if !IsValidEstado(estado) {
		return Registro{}, nil, ErrEstadoInvalido
	}

	usuario, err := s.diretorio.GetUsuario(ctx, matricula)
	if err != nil {
		return Registro{}, nil, err
	}
	if !usuario.Ativo {
		return Registro{}, nil, ErrColaboradorInativo
	}

	registro, err := s.store.CreateRegistro(ctx, Registro{
		Matricula:  usuario.Matricula,
		Nome:       usuario.Nome,
		Estado:     estado,
		Observacao: strings.TrimSpace(observacao),
	})
	if err != nil {
		return Registro{}, nil, err
	}

	if !DeveEscalar(estado) {
		return registro, nil, nil
	}

	criado, err := s.escalar(ctx, usuario, registro)
	if err != nil {
		return Registro{}, nil, err
	}

	return registro, criado, nil
}

// escalar executa o pipeline completo para um registro que exige alerta.
// A resolução precisa terminar antes do despacho começar.
func (s *Service) escalar(ctx context.Context, usuario repo.Usuario, registro Registro) (*Alerta, error) {
	responsaveis, err := s.hierarquia.ResolveResponsaveis(ctx, usuario.EquipeID, usuario.LetraID)
	if err != nil {
		return nil, err
	}

	alerta := Alerta{
		Matricula:  usuario.Matricula,
		Nome:       registro.Nome,
		Estado:     registro.Estado,
		Observacao: registro.Observacao,
	}
	if responsaveis.Lider != nil {
		alerta.LiderMatricula = &responsaveis.Lider.Matricula
	}
	if responsaveis.Supervisor != nil {
		alerta.SupervisorMatricula = &responsaveis.Supervisor.Matricula
	}

	criado, err := s.store.CreateAlerta(ctx, alerta)
	if err != nil {
		return nil, err
	}

	rascunhos := MontarDestinatarios(registro.Nome, registro.Estado, registro.Observacao, registro.CriadoEm, responsaveis)
	if len(rascunhos) == 0 {
		s.logger.Warn().Int64("matricula", usuario.Matricula).Msg("alerta: nenhum responsável para notificar")
		return &criado, nil
	}

	s.dispatcher.Dispatch(ctx, criado.ID, rascunhos)

	if err := s.store.SetNotificado(ctx, criado.ID); err != nil {
		s.logger.Error().Err(err).Str("alerta", criado.ID.String()).Msg("alerta: falha ao marcar notificado")
		return &criado, nil
	}
	criado.Notificado = true

	return &criado, nil
}

// ListAlertas lista alertas pelo filtro informado.
func (s *Service) ListAlertas(ctx context.Context, filtro Filtro) ([]Alerta, error) {
	return s.store.ListAlertas(ctx, filtro)
}

// ResolverAlerta encerra um alerta aberto.
func (s *Service) ResolverAlerta(ctx context.Context, id uuid.UUID) (Alerta, error) {
	return s.store.MarcarResolvido(ctx, id)
}

// CriarTratativa registra a ação de um responsável sobre o alerta,
// após passar pela escada de autorização.
func (s *Service) CriarTratativa(ctx context.Context, requerente int64, alertaID uuid.UUID, descricao string) (Tratativa, error) {
	descricao = strings.TrimSpace(descricao)
	if descricao == "" {
		return Tratativa{}, ErrDescricaoVazia
	}

	alerta, err := s.store.GetAlerta(ctx, alertaID)
	if err != nil {
		return Tratativa{}, err
	}

	autor, err := s.diretorio.GetUsuario(ctx, requerente)
	if err != nil {
		return Tratativa{}, err
	}

	alvo, err := s.diretorio.GetUsuario(ctx, alerta.Matricula)
	if err != nil {
		return Tratativa{}, err
	}

	if decisao := AutorizarTratativa(autor, alvo); !decisao.Autorizado {
		return Tratativa{}, &ErrNaoAutorizado{Motivo: decisao.Motivo}
	}

	return s.store.CreateTratativa(ctx, Tratativa{
		AlertaID:  alertaID,
		Autor:     autor.Matricula,
		Descricao: descricao,
	})
}

// ListTratativas lista tratativas de um alerta.
func (s *Service) ListTratativas(ctx context.Context, alertaID uuid.UUID) ([]Tratativa, error) {
	if _, err := s.store.GetAlerta(ctx, alertaID); err != nil {
		return nil, err
	}
	return s.store.ListTratativas(ctx, alertaID)
}

// ListNotificacoes lista as notificações do destinatário autenticado.
func (s *Service) ListNotificacoes(ctx context.Context, destinatario int64) ([]Notificacao, error) {
	return s.store.ListNotificacoes(ctx, destinatario)
}

// MarcarLida marca uma notificação do próprio destinatário como lida.
func (s *Service) MarcarLida(ctx context.Context, id uuid.UUID, destinatario int64) error {
	return s.store.MarcarLida(ctx, id, destinatario)
}
