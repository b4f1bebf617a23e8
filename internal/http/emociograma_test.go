package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/systemmax/sst/internal/alerta"
	httpmiddleware "github.com/systemmax/sst/internal/http/middleware"
	"github.com/systemmax/sst/internal/org"
	"github.com/systemmax/sst/internal/repo"
)

type memStore struct {
	alertas      map[uuid.UUID]alerta.Alerta
	notificacoes []alerta.Notificacao
	tratativas   []alerta.Tratativa
}

func newMemStore() *memStore {
	return &memStore{alertas: map[uuid.UUID]alerta.Alerta{}}
}

func (m *memStore) CreateRegistro(ctx context.Context, registro alerta.Registro) (alerta.Registro, error) {
	registro.ID = uuid.New()
	registro.CriadoEm = time.Now()
	return registro, nil
}

func (m *memStore) CreateAlerta(ctx context.Context, a alerta.Alerta) (alerta.Alerta, error) {
	a.ID = uuid.New()
	a.CriadoEm = time.Now()
	m.alertas[a.ID] = a
	return a, nil
}

func (m *memStore) GetAlerta(ctx context.Context, id uuid.UUID) (alerta.Alerta, error) {
	if a, ok := m.alertas[id]; ok {
		return a, nil
	}
	return alerta.Alerta{}, alerta.ErrNotFound
}

func (m *memStore) ListAlertas(ctx context.Context, filtro alerta.Filtro) ([]alerta.Alerta, error) {
	var out []alerta.Alerta
	for _, a := range m.alertas {
		out = append(out, a)
	}
	return out, nil
}

func (m *memStore) SetNotificado(ctx context.Context, id uuid.UUID) error {
	a := m.alertas[id]
	a.Notificado = true
	m.alertas[id] = a
	return nil
}

func (m *memStore) MarcarResolvido(ctx context.Context, id uuid.UUID) (alerta.Alerta, error) {
	a, ok := m.alertas[id]
	if !ok {
		return alerta.Alerta{}, alerta.ErrNotFound
	}
	if a.Resolvido {
		return alerta.Alerta{}, alerta.ErrJaResolvido
	}
	agora := time.Now()
	a.Resolvido = true
	a.ResolvidoEm = &agora
	m.alertas[id] = a
	return a, nil
}

func (m *memStore) CreateNotificacao(ctx context.Context, notif alerta.Notificacao) (alerta.Notificacao, error) {
	notif.ID = uuid.New()
	notif.CriadoEm = time.Now()
	m.notificacoes = append(m.notificacoes, notif)
	return notif, nil
}

func (m *memStore) ListNotificacoes(ctx context.Context, destinatario int64) ([]alerta.Notificacao, error) {
	var out []alerta.Notificacao
	for _, n := range m.notificacoes {
		if n.Destinatario == destinatario {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memStore) MarcarLida(ctx context.Context, id uuid.UUID, destinatario int64) error {
	for i, n := range m.notificacoes {
		if n.ID == id && n.Destinatario == destinatario {
			m.notificacoes[i].Lida = true
			return nil
		}
	}
	return alerta.ErrNotifNaoEncontrada
}

func (m *memStore) CreateTratativa(ctx context.Context, t alerta.Tratativa) (alerta.Tratativa, error) {
	t.ID = uuid.New()
	t.CriadoEm = time.Now()
	m.tratativas = append(m.tratativas, t)
	return t, nil
}

func (m *memStore) ListTratativas(ctx context.Context, alertaID uuid.UUID) ([]alerta.Tratativa, error) {
	var out []alerta.Tratativa
	for _, t := range m.tratativas {
		if t.AlertaID == alertaID {
			out = append(out, t)
		}
	}
	return out, nil
}

type memHierarquia struct {
	resp org.Responsaveis
}

func (m *memHierarquia) ResolveResponsaveis(ctx context.Context, equipeID, letraID *uuid.UUID) (org.Responsaveis, error) {
	return m.resp, nil
}

type memDiretorio struct {
	usuarios map[int64]repo.Usuario
}

func (m *memDiretorio) GetUsuario(ctx context.Context, matricula int64) (repo.Usuario, error) {
	if u, ok := m.usuarios[matricula]; ok {
		return u, nil
	}
	return repo.Usuario{}, repo.ErrNotFound
}

// comoUsuario injeta a identidade autenticada no contexto, como o
// middleware Auth faria após validar o token.
func comoUsuario(matricula int64, perfil string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), httpmiddleware.ContextKeyMatricula, matricula)
			ctx = context.WithValue(ctx, httpmiddleware.ContextKeyPerfil, perfil)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func montaHandler() (*memStore, *Handler) {
	store := newMemStore()
	lider := repo.Usuario{Matricula: 2002, Nome: "Carlos", Ativo: true}

	svc := alerta.NewService(
		store,
		&memHierarquia{resp: org.Responsaveis{Lider: &lider}},
		&memDiretorio{usuarios: map[int64]repo.Usuario{
			1001: {Matricula: 1001, Nome: "Ana", Perfil: repo.PerfilUsuario, Ativo: true},
			2002: lider,
		}},
		alerta.NewDispatcher(store, zerolog.Nop()),
		zerolog.Nop(),
	)

	return store, &Handler{alertas: svc}
}

func TestRegistrarEmociogramaEscalona(t *testing.T) {
	store, h := montaHandler()

	r := chi.NewRouter()
	r.With(comoUsuario(1001, repo.PerfilUsuario)).Post("/emociograma", h.RegistrarEmociograma)

	req := httptest.NewRequest(http.MethodPost, "/emociograma", strings.NewReader(`{"estado":"pessimo","observacao":"semana difícil"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("esperava 201, obteve %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data struct {
			Registro alerta.Registro `json:"registro"`
			Alerta   *alerta.Alerta  `json:"alerta"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("resposta inválida: %v", err)
	}
	if envelope.Data.Registro.Nome != "Ana" {
		t.Errorf("registro inesperado: %+v", envelope.Data.Registro)
	}
	if envelope.Data.Alerta == nil || !envelope.Data.Alerta.Notificado {
		t.Errorf("alerta deveria vir notificado: %+v", envelope.Data.Alerta)
	}
	if len(store.notificacoes) != 1 || store.notificacoes[0].Destinatario != 2002 {
		t.Errorf("notificação do líder não foi persistida: %+v", store.notificacoes)
	}
}

func TestRegistrarEmociogramaEstadoInvalido(t *testing.T) {
	_, h := montaHandler()

	r := chi.NewRouter()
	r.With(comoUsuario(1001, repo.PerfilUsuario)).Post("/emociograma", h.RegistrarEmociograma)

	req := httptest.NewRequest(http.MethodPost, "/emociograma", strings.NewReader(`{"estado":"otimo"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("esperava 400, obteve %d", rec.Code)
	}

	var envelope ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("resposta inválida: %v", err)
	}
	if envelope.Error == nil || envelope.Error.Code != "VALIDATION" {
		t.Errorf("erro inesperado: %+v", envelope.Error)
	}
}

func TestMarcarNotificacaoLidaDeOutro(t *testing.T) {
	store, h := montaHandler()

	notif, err := store.CreateNotificacao(context.Background(), alerta.Notificacao{
		AlertaID:     uuid.New(),
		Destinatario: 2002,
		Papel:        alerta.PapelLider,
	})
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}

	r := chi.NewRouter()
	r.With(comoUsuario(1001, repo.PerfilUsuario)).Post("/notificacoes/{id}/lida", h.MarcarNotificacaoLida)

	req := httptest.NewRequest(http.MethodPost, "/notificacoes/"+notif.ID.String()+"/lida", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("notificação alheia deve responder 404, obteve %d", rec.Code)
	}
}

func TestListAlertasExigePerfil(t *testing.T) {
	_, h := montaHandler()

	r := chi.NewRouter()
	r.With(
		comoUsuario(1001, repo.PerfilUsuario),
		httpmiddleware.RequirePerfis(repo.PerfilAdmin, repo.PerfilEditor),
	).Get("/alertas", h.ListAlertas)

	req := httptest.NewRequest(http.MethodGet, "/alertas", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("usuário comum não pode listar alertas, obteve %d", rec.Code)
	}
}
