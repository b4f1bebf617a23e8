package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/systemmax/sst/internal/alerta"
	httpmiddleware "github.com/systemmax/sst/internal/http/middleware"
	"github.com/systemmax/sst/internal/repo"
)

// ListAlertas lista alertas com filtros de estado e resolução.
func (h *Handler) ListAlertas(w http.ResponseWriter, r *http.Request) {
	filtro := alerta.Filtro{
		Estado: r.URL.Query().Get("estado"),
	}

	if raw := r.URL.Query().Get("resolvido"); raw != "" {
		resolvido, err := strconv.ParseBool(raw)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "resolvido deve ser booleano", nil)
			return
		}
		filtro.Resolvido = &resolvido
	}

	filtro.Limit, filtro.Offset = paginacao(r)

	alertas, err := h.alertas.ListAlertas(r.Context(), filtro)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível listar alertas", nil)
		return
	}

	if alertas == nil {
		alertas = []alerta.Alerta{}
	}
	WriteJSON(w, http.StatusOK, alertas)
}

// ResolverAlerta encerra um alerta aberto.
func (h *Handler) ResolverAlerta(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "identificador inválido", nil)
		return
	}

	resolvido, err := h.alertas.ResolverAlerta(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, alerta.ErrNotFound):
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "alerta não encontrado", nil)
		case errors.Is(err, alerta.ErrJaResolvido):
			WriteError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
		default:
			WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível resolver o alerta", nil)
		}
		return
	}

	WriteJSON(w, http.StatusOK, resolvido)
}

// CriarTratativa registra tratativa sobre um alerta, sujeita à escada
// de autorização.
func (h *Handler) CriarTratativa(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "identificador inválido", nil)
		return
	}

	var payload struct {
		Descricao string `json:"descricao"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	matricula := httpmiddleware.GetMatricula(r.Context())

	tratativa, err := h.alertas.CriarTratativa(r.Context(), matricula, id, payload.Descricao)
	if err != nil {
		var naoAutorizado *alerta.ErrNaoAutorizado
		switch {
		case errors.Is(err, alerta.ErrDescricaoVazia):
			WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		case errors.As(err, &naoAutorizado):
			WriteError(w, http.StatusForbidden, "FORBIDDEN", naoAutorizado.Motivo, nil)
		case errors.Is(err, alerta.ErrNotFound):
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "alerta não encontrado", nil)
		case errors.Is(err, repo.ErrNotFound):
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "colaborador não encontrado", nil)
		default:
			WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível registrar a tratativa", nil)
		}
		return
	}

	WriteJSON(w, http.StatusCreated, tratativa)
}

// ListTratativas lista as tratativas de um alerta.
func (h *Handler) ListTratativas(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "identificador inválido", nil)
		return
	}

	tratativas, err := h.alertas.ListTratativas(r.Context(), id)
	if err != nil {
		if errors.Is(err, alerta.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "alerta não encontrado", nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível listar tratativas", nil)
		return
	}

	if tratativas == nil {
		tratativas = []alerta.Tratativa{}
	}
	WriteJSON(w, http.StatusOK, tratativas)
}

// paginacao extrai page/limit da query string com defaults seguros.
func paginacao(r *http.Request) (limit, offset int) {
	limit = 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}

	return limit, (page - 1) * limit
}
