package comite

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/systemmax/sst/internal/repo"
)

// Store descreve a persistência de comitês.
type Store interface {
	Create(ctx context.Context, comite Comite, matriculas []int64) (Comite, error)
	Update(ctx context.Context, comite Comite, matriculas []int64) (Comite, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (Comite, error)
	List(ctx context.Context, filtro Filtro) ([]Comite, error)
	Existe(ctx context.Context, tipo string, contrato *string, excluir *uuid.UUID) (bool, error)
}

// Cadastro consulta contratos e colaboradores para validação de membros.
type Cadastro interface {
	GetContrato(ctx context.Context, codigo string) (repo.Contrato, error)
	GetUsuariosAtivos(ctx context.Context, matriculas []int64) ([]repo.Usuario, error)
}

// Service aplica as regras de elegibilidade dos comitês.
type Service struct {
	store    Store
	cadastro Cadastro
}

// NewService cria o serviço de comitês.
func NewService(store Store, cadastro Cadastro) *Service {
	return &Service{store: store, cadastro: cadastro}
}

// Criar valida e cria um comitê com seus membros.
func (s *Service) Criar(ctx context.Context, input Input) (Comite, error) {
	comite, matriculas, err := s.validar(ctx, input, nil)
	if err != nil {
		return Comite{}, err
	}
	return s.store.Create(ctx, comite, matriculas)
}

// Editar valida e substitui integralmente o comitê: os membros anteriores
// são descartados e a lista proposta passa a valer.
func (s *Service) Editar(ctx context.Context, id uuid.UUID, input Input) (Comite, error) {
	existente, err := s.store.Get(ctx, id)
	if err != nil {
		return Comite{}, err
	}

	comite, matriculas, err := s.validar(ctx, input, &existente.ID)
	if err != nil {
		return Comite{}, err
	}
	comite.ID = existente.ID
	return s.store.Update(ctx, comite, matriculas)
}

// Excluir remove o comitê definitivamente.
func (s *Service) Excluir(ctx context.Context, id uuid.UUID) error {
	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// Buscar recupera um comitê com seus membros.
func (s *Service) Buscar(ctx context.Context, id uuid.UUID) (Comite, error) {
	return s.store.Get(ctx, id)
}

// Listar lista comitês pelo filtro informado.
func (s *Service) Listar(ctx context.Context, filtro Filtro) ([]Comite, error) {
	filtro.Tipo = NormalizeTipo(filtro.Tipo)
	if filtro.Tipo != "" && !IsValidTipo(filtro.Tipo) {
		return nil, ErrTipoInvalido
	}
	return s.store.List(ctx, filtro)
}

// validar aplica as regras na ordem fixa: nome, tipo, contrato, unicidade
// e membros. A primeira regra violada decide; não há agregação de erros.
func (s *Service) validar(ctx context.Context, input Input, excluir *uuid.UUID) (Comite, []int64, error) {
	nome := strings.TrimSpace(input.Nome)
	if nome == "" {
		return Comite{}, nil, ErrNomeObrigatorio
	}

	tipo := NormalizeTipo(input.Tipo)
	if !IsValidTipo(tipo) {
		return Comite{}, nil, ErrTipoInvalido
	}

	var contrato *string
	switch tipo {
	case TipoCorporativo:
		if input.Contrato != nil && strings.TrimSpace(*input.Contrato) != "" {
			return Comite{}, nil, ErrContratoNaoPermitido
		}
	case TipoLocal:
		if input.Contrato == nil || strings.TrimSpace(*input.Contrato) == "" {
			return Comite{}, nil, ErrContratoObrigatorio
		}
		codigo := strings.TrimSpace(*input.Contrato)
		if _, err := s.cadastro.GetContrato(ctx, codigo); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return Comite{}, nil, ErrContratoInexistente
			}
			return Comite{}, nil, err
		}
		contrato = &codigo
	}

	existe, err := s.store.Existe(ctx, tipo, contrato, excluir)
	if err != nil {
		return Comite{}, nil, err
	}
	if existe {
		if tipo == TipoCorporativo {
			return Comite{}, nil, ErrCorporativoExistente
		}
		return Comite{}, nil, ErrLocalExistente
	}

	if len(input.Matriculas) == 0 {
		return Comite{}, nil, ErrSemMembros
	}

	ativos, err := s.cadastro.GetUsuariosAtivos(ctx, input.Matriculas)
	if err != nil {
		return Comite{}, nil, err
	}

	porMatricula := make(map[int64]repo.Usuario, len(ativos))
	for _, u := range ativos {
		porMatricula[u.Matricula] = u
	}

	for _, matricula := range input.Matriculas {
		usuario, ok := porMatricula[matricula]
		if !ok {
			return Comite{}, nil, &ErrMembroInvalido{Matricula: matricula}
		}
		// membros sem contrato fixo podem integrar qualquer comitê local
		if contrato != nil && usuario.Contrato != nil && *usuario.Contrato != *contrato {
			return Comite{}, nil, &ErrMembroForaContrato{Matricula: matricula}
		}
	}

	return Comite{Nome: nome, Tipo: tipo, Contrato: contrato}, input.Matriculas, nil
}
