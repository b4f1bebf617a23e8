// Package org resolve a hierarquia organizacional: quem lidera a letra
// e quem supervisiona a equipe de um colaborador.
package org

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/systemmax/sst/internal/repo"
)

// Repository descreve as consultas de hierarquia necessárias ao resolver.
type Repository interface {
	GetEquipe(ctx context.Context, id uuid.UUID) (repo.Equipe, error)
	GetLetra(ctx context.Context, id uuid.UUID) (repo.Letra, error)
	GetUsuario(ctx context.Context, matricula int64) (repo.Usuario, error)
	GetFallbackAdministrativo(ctx context.Context) (repo.Usuario, error)
}

// Responsaveis agrupa os destinatários resolvidos para um colaborador.
// Campos nulos indicam ausência de responsável, não erro.
type Responsaveis struct {
	Lider      *repo.Usuario
	Supervisor *repo.Usuario
}

// Resolver consulta a hierarquia vigente a cada chamada, sem cache.
type Resolver struct {
	repo Repository
}

// NewResolver cria um resolver sobre o repositório informado.
func NewResolver(r Repository) *Resolver {
	return &Resolver{repo: r}
}

// ResolveResponsaveis devolve líder da letra e supervisor da equipe.
// Quando nenhuma letra aponta um líder, cai no fallback administrativo:
// o admin/editor ativo de menor matrícula, garantindo ao menos um
// destinatário notificável sempre que houver um administrador ativo.
func (r *Resolver) ResolveResponsaveis(ctx context.Context, equipeID, letraID *uuid.UUID) (Responsaveis, error) {
	var resp Responsaveis

	if letraID != nil {
		letra, err := r.repo.GetLetra(ctx, *letraID)
		switch {
		case errors.Is(err, repo.ErrNotFound):
			// letra removida: segue sem líder
		case err != nil:
			return Responsaveis{}, err
		case letra.LiderMatricula != nil:
			lider, err := r.lookupAtivo(ctx, *letra.LiderMatricula)
			if err != nil {
				return Responsaveis{}, err
			}
			resp.Lider = lider
		}
	}

	if equipeID != nil {
		equipe, err := r.repo.GetEquipe(ctx, *equipeID)
		switch {
		case errors.Is(err, repo.ErrNotFound):
			// equipe removida: segue sem supervisor
		case err != nil:
			return Responsaveis{}, err
		case equipe.SupervisorMatricula != nil:
			supervisor, err := r.lookupAtivo(ctx, *equipe.SupervisorMatricula)
			if err != nil {
				return Responsaveis{}, err
			}
			resp.Supervisor = supervisor
		}
	}

	if resp.Lider == nil {
		fallback, err := r.repo.GetFallbackAdministrativo(ctx)
		if errors.Is(err, repo.ErrNotFound) {
			return resp, nil
		}
		if err != nil {
			return Responsaveis{}, err
		}
		resp.Lider = &fallback
	}

	return resp, nil
}

func (r *Resolver) lookupAtivo(ctx context.Context, matricula int64) (*repo.Usuario, error) {
	usuario, err := r.repo.GetUsuario(ctx, matricula)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !usuario.Ativo {
		return nil, nil
	}
	return &usuario, nil
}
