package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/systemmax/sst/internal/alerta"
	httpmiddleware "github.com/systemmax/sst/internal/http/middleware"
	"github.com/systemmax/sst/internal/repo"
)

// RegistrarEmociograma grava o estado emocional do colaborador autenticado
// e dispara o escalonamento quando o estado exige.
func (h *Handler) RegistrarEmociograma(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Estado     string `json:"estado"`
		Observacao string `json:"observacao"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	matricula := httpmiddleware.GetMatricula(r.Context())

	registro, criado, err := h.alertas.RegistrarEstado(r.Context(), matricula, payload.Estado, payload.Observacao)
	if err != nil {
		switch {
		case errors.Is(err, alerta.ErrEstadoInvalido):
			WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		case errors.Is(err, alerta.ErrColaboradorInativo):
			WriteError(w, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
		case errors.Is(err, repo.ErrNotFound):
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "colaborador não encontrado", nil)
		default:
			WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível registrar o estado", nil)
		}
		return
	}

	resposta := map[string]any{"registro": registro}
	if criado != nil {
		resposta["alerta"] = criado
	}

	WriteJSON(w, http.StatusCreated, resposta)
}

// ListNotificacoes lista as notificações do colaborador autenticado.
func (h *Handler) ListNotificacoes(w http.ResponseWriter, r *http.Request) {
	matricula := httpmiddleware.GetMatricula(r.Context())

	notificacoes, err := h.alertas.ListNotificacoes(r.Context(), matricula)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível listar notificações", nil)
		return
	}

	if notificacoes == nil {
		notificacoes = []alerta.Notificacao{}
	}
	WriteJSON(w, http.StatusOK, notificacoes)
}

// MarcarNotificacaoLida marca como lida uma notificação do próprio destinatário.
func (h *Handler) MarcarNotificacaoLida(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "identificador inválido", nil)
		return
	}

	matricula := httpmiddleware.GetMatricula(r.Context())

	if err := h.alertas.MarcarLida(r.Context(), id, matricula); err != nil {
		if errors.Is(err, alerta.ErrNotifNaoEncontrada) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "notificação não encontrada", nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível atualizar a notificação", nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
