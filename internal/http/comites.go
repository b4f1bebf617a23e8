package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/systemmax/sst/internal/comite"
)

type comitePayload struct {
	Nome     string  `json:"nome"`
	Tipo     string  `json:"tipo"`
	Contrato *string `json:"contrato,omitempty"`
	Membros  []int64 `json:"membros"`
}

// ListComites lista comitês com busca e filtro por tipo.
func (h *Handler) ListComites(w http.ResponseWriter, r *http.Request) {
	filtro := comite.Filtro{
		Busca: r.URL.Query().Get("search"),
		Tipo:  r.URL.Query().Get("tipo"),
	}
	filtro.Limit, filtro.Offset = paginacao(r)

	comites, err := h.comites.Listar(r.Context(), filtro)
	if err != nil {
		if errors.Is(err, comite.ErrTipoInvalido) {
			WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível listar comitês", nil)
		return
	}

	if comites == nil {
		comites = []comite.Comite{}
	}
	WriteJSON(w, http.StatusOK, comites)
}

// GetComite recupera um comitê com seus membros.
func (h *Handler) GetComite(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "identificador inválido", nil)
		return
	}

	encontrado, err := h.comites.Buscar(r.Context(), id)
	if err != nil {
		if errors.Is(err, comite.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "comitê não encontrado", nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível carregar o comitê", nil)
		return
	}

	WriteJSON(w, http.StatusOK, encontrado)
}

// CriarComite cria um comitê de boas práticas.
func (h *Handler) CriarComite(w http.ResponseWriter, r *http.Request) {
	var payload comitePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	criado, err := h.comites.Criar(r.Context(), comite.Input{
		Nome:       payload.Nome,
		Tipo:       payload.Tipo,
		Contrato:   payload.Contrato,
		Matriculas: payload.Membros,
	})
	if err != nil {
		h.handleComiteError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, criado)
}

// EditarComite substitui integralmente os dados e membros do comitê.
func (h *Handler) EditarComite(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "identificador inválido", nil)
		return
	}

	var payload comitePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	atualizado, err := h.comites.Editar(r.Context(), id, comite.Input{
		Nome:       payload.Nome,
		Tipo:       payload.Tipo,
		Contrato:   payload.Contrato,
		Matriculas: payload.Membros,
	})
	if err != nil {
		h.handleComiteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, atualizado)
}

// ExcluirComite remove o comitê definitivamente.
func (h *Handler) ExcluirComite(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "identificador inválido", nil)
		return
	}

	if err := h.comites.Excluir(r.Context(), id); err != nil {
		h.handleComiteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListContratos lista contratos cadastrados.
func (h *Handler) ListContratos(w http.ResponseWriter, r *http.Request) {
	contratos, err := h.queries.ListContratos(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível listar contratos", nil)
		return
	}

	WriteJSON(w, http.StatusOK, contratos)
}

func (h *Handler) handleComiteError(w http.ResponseWriter, err error) {
	var membroInvalido *comite.ErrMembroInvalido
	var membroForaContrato *comite.ErrMembroForaContrato

	switch {
	case errors.Is(err, comite.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "comitê não encontrado", nil)
	case errors.Is(err, comite.ErrCorporativoExistente),
		errors.Is(err, comite.ErrLocalExistente):
		WriteError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
	case errors.As(err, &membroInvalido):
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), map[string]any{"matricula": membroInvalido.Matricula})
	case errors.As(err, &membroForaContrato):
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), map[string]any{"matricula": membroForaContrato.Matricula})
	case errors.Is(err, comite.ErrNomeObrigatorio),
		errors.Is(err, comite.ErrTipoInvalido),
		errors.Is(err, comite.ErrContratoObrigatorio),
		errors.Is(err, comite.ErrContratoNaoPermitido),
		errors.Is(err, comite.ErrContratoInexistente),
		errors.Is(err, comite.ErrSemMembros):
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	default:
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível processar o comitê", nil)
	}
}
