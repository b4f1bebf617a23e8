package alerta

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/systemmax/sst/internal/org"
	"github.com/systemmax/sst/internal/repo"
)

type stubStore struct {
	registros    []Registro
	alertas      map[uuid.UUID]Alerta
	notificacoes []Notificacao
	tratativas   []Tratativa

	// destinatários cuja persistência de notificação deve falhar
	falhaNotificacao map[int64]bool
}

func newStubStore() *stubStore {
	return &stubStore{alertas: map[uuid.UUID]Alerta{}}
}

func (s *stubStore) CreateRegistro(ctx context.Context, registro Registro) (Registro, error) {
	registro.ID = uuid.New()
	registro.CriadoEm = time.Now()
	s.registros = append(s.registros, registro)
	return registro, nil
}

func (s *stubStore) CreateAlerta(ctx context.Context, alerta Alerta) (Alerta, error) {
	alerta.ID = uuid.New()
	alerta.CriadoEm = time.Now()
	s.alertas[alerta.ID] = alerta
	return alerta, nil
}

func (s *stubStore) GetAlerta(ctx context.Context, id uuid.UUID) (Alerta, error) {
	if a, ok := s.alertas[id]; ok {
		return a, nil
	}
	return Alerta{}, ErrNotFound
}

func (s *stubStore) ListAlertas(ctx context.Context, filtro Filtro) ([]Alerta, error) {
	var out []Alerta
	for _, a := range s.alertas {
		out = append(out, a)
	}
	return out, nil
}

func (s *stubStore) SetNotificado(ctx context.Context, id uuid.UUID) error {
	a, ok := s.alertas[id]
	if !ok {
		return ErrNotFound
	}
	a.Notificado = true
	s.alertas[id] = a
	return nil
}

func (s *stubStore) MarcarResolvido(ctx context.Context, id uuid.UUID) (Alerta, error) {
	a, ok := s.alertas[id]
	if !ok {
		return Alerta{}, ErrNotFound
	}
	if a.Resolvido {
		return Alerta{}, ErrJaResolvido
	}
	agora := time.Now()
	a.Resolvido = true
	a.ResolvidoEm = &agora
	s.alertas[id] = a
	return a, nil
}

func (s *stubStore) CreateNotificacao(ctx context.Context, notif Notificacao) (Notificacao, error) {
	if s.falhaNotificacao[notif.Destinatario] {
		return Notificacao{}, fmt.Errorf("insert falhou para %d", notif.Destinatario)
	}
	notif.ID = uuid.New()
	notif.CriadoEm = time.Now()
	s.notificacoes = append(s.notificacoes, notif)
	return notif, nil
}

func (s *stubStore) ListNotificacoes(ctx context.Context, destinatario int64) ([]Notificacao, error) {
	var out []Notificacao
	for _, n := range s.notificacoes {
		if n.Destinatario == destinatario {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *stubStore) MarcarLida(ctx context.Context, id uuid.UUID, destinatario int64) error {
	for i, n := range s.notificacoes {
		if n.ID == id && n.Destinatario == destinatario {
			s.notificacoes[i].Lida = true
			return nil
		}
	}
	return ErrNotifNaoEncontrada
}

func (s *stubStore) CreateTratativa(ctx context.Context, tratativa Tratativa) (Tratativa, error) {
	tratativa.ID = uuid.New()
	tratativa.CriadoEm = time.Now()
	s.tratativas = append(s.tratativas, tratativa)
	return tratativa, nil
}

func (s *stubStore) ListTratativas(ctx context.Context, alertaID uuid.UUID) ([]Tratativa, error) {
	var out []Tratativa
	for _, t := range s.tratativas {
		if t.AlertaID == alertaID {
			out = append(out, t)
		}
	}
	return out, nil
}

type stubHierarquia struct {
	resp org.Responsaveis
}

func (s *stubHierarquia) ResolveResponsaveis(ctx context.Context, equipeID, letraID *uuid.UUID) (org.Responsaveis, error) {
	return s.resp, nil
}

type stubDiretorio struct {
	usuarios map[int64]repo.Usuario
}

func (s *stubDiretorio) GetUsuario(ctx context.Context, matricula int64) (repo.Usuario, error) {
	if u, ok := s.usuarios[matricula]; ok {
		return u, nil
	}
	return repo.Usuario{}, repo.ErrNotFound
}

// cenário padrão: Ana (1001) na equipe T1 e letra A, liderada por
// Carlos (2002) e supervisionada por Bea (3003).
func cenarioPadrao() (*stubStore, *Service) {
	equipeID := uuid.New()
	letraID := uuid.New()

	ana := repo.Usuario{Matricula: 1001, Nome: "Ana", Perfil: repo.PerfilUsuario, EquipeID: &equipeID, LetraID: &letraID, Ativo: true}
	carlos := repo.Usuario{Matricula: 2002, Nome: "Carlos", Perfil: repo.PerfilUsuario, Funcao: comFuncao(repo.FuncaoLider), LetraID: &letraID, Ativo: true}
	bea := repo.Usuario{Matricula: 3003, Nome: "Bea", Perfil: repo.PerfilUsuario, Funcao: comFuncao(repo.FuncaoSupervisor), EquipeID: &equipeID, Ativo: true}

	store := newStubStore()
	svc := NewService(
		store,
		&stubHierarquia{resp: org.Responsaveis{Lider: &carlos, Supervisor: &bea}},
		&stubDiretorio{usuarios: map[int64]repo.Usuario{1001: ana, 2002: carlos, 3003: bea}},
		NewDispatcher(store, zerolog.Nop()),
		zerolog.Nop(),
	)
	return store, svc
}

func TestRegistrarEstadoBemNaoEscalona(t *testing.T) {
	store, svc := cenarioPadrao()

	registro, alerta, err := svc.RegistrarEstado(context.Background(), 1001, "bem", "")
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if alerta != nil {
		t.Fatalf("estado bem não deve escalonar, obteve alerta %+v", alerta)
	}
	if registro.Estado != EstadoBem || registro.Nome != "Ana" {
		t.Errorf("registro inesperado: %+v", registro)
	}
	if len(store.alertas) != 0 || len(store.notificacoes) != 0 {
		t.Errorf("não deveria haver alerta nem notificação, obteve %d/%d", len(store.alertas), len(store.notificacoes))
	}
}

func TestRegistrarEstadoPessimoEscalona(t *testing.T) {
	store, svc := cenarioPadrao()

	registro, alerta, err := svc.RegistrarEstado(context.Background(), 1001, "Pessimo", " plantão dobrado ")
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if alerta == nil {
		t.Fatal("estado péssimo deve gerar alerta")
	}
	if registro.Observacao != "plantão dobrado" {
		t.Errorf("observação deve ser aparada, obteve %q", registro.Observacao)
	}

	if alerta.Nome != "Ana" || alerta.Estado != EstadoPessimo {
		t.Errorf("alerta sem snapshot do registro: %+v", alerta)
	}
	if alerta.LiderMatricula == nil || *alerta.LiderMatricula != 2002 {
		t.Errorf("alerta deve guardar a matrícula do líder, obteve %v", alerta.LiderMatricula)
	}
	if alerta.SupervisorMatricula == nil || *alerta.SupervisorMatricula != 3003 {
		t.Errorf("alerta deve guardar a matrícula do supervisor, obteve %v", alerta.SupervisorMatricula)
	}
	if !alerta.Notificado {
		t.Error("alerta deve sair marcado como notificado")
	}
	if persistido := store.alertas[alerta.ID]; !persistido.Notificado {
		t.Error("flag notificado deve estar persistida")
	}

	if len(store.notificacoes) != 2 {
		t.Fatalf("esperava 2 notificações, obteve %d", len(store.notificacoes))
	}
	papeis := map[int64]string{}
	for _, n := range store.notificacoes {
		papeis[n.Destinatario] = n.Papel
		if n.AlertaID != alerta.ID || n.Nome != "Ana" || n.Estado != EstadoPessimo {
			t.Errorf("notificação sem snapshot do alerta: %+v", n)
		}
	}
	if papeis[2002] != PapelLider || papeis[3003] != PapelSupervisor {
		t.Errorf("papéis inesperados: %v", papeis)
	}
}

func TestRegistrarEstadoInvalido(t *testing.T) {
	store, svc := cenarioPadrao()

	_, _, err := svc.RegistrarEstado(context.Background(), 1001, "otimo", "")
	if !errors.Is(err, ErrEstadoInvalido) {
		t.Fatalf("esperava ErrEstadoInvalido, obteve %v", err)
	}
	if len(store.registros) != 0 {
		t.Error("estado inválido não deve gerar registro")
	}
}

func TestRegistrarEstadoColaboradorInativo(t *testing.T) {
	store, svc := cenarioPadrao()
	inativo := repo.Usuario{Matricula: 5005, Nome: "Davi", Perfil: repo.PerfilUsuario, Ativo: false}
	svc.diretorio.(*stubDiretorio).usuarios[5005] = inativo

	_, _, err := svc.RegistrarEstado(context.Background(), 5005, "pessimo", "")
	if !errors.Is(err, ErrColaboradorInativo) {
		t.Fatalf("esperava ErrColaboradorInativo, obteve %v", err)
	}
	if len(store.registros) != 0 {
		t.Error("colaborador inativo não deve gerar registro")
	}
}

func TestRegistrarEstadoSemResponsaveis(t *testing.T) {
	store, svc := cenarioPadrao()
	svc.hierarquia.(*stubHierarquia).resp = org.Responsaveis{}

	_, alerta, err := svc.RegistrarEstado(context.Background(), 1001, "regular", "")
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if alerta == nil {
		t.Fatal("alerta deve existir mesmo sem destinatários")
	}
	if alerta.Notificado {
		t.Error("sem destinatários o alerta não pode constar como notificado")
	}
	if len(store.notificacoes) != 0 {
		t.Errorf("não deveria haver notificação, obteve %d", len(store.notificacoes))
	}
}

func TestDispatchFalhaParcialNaoBloqueia(t *testing.T) {
	store := newStubStore()
	store.falhaNotificacao = map[int64]bool{2002: true}

	d := NewDispatcher(store, zerolog.Nop())
	rascunhos := []Rascunho{
		{Destinatario: 2002, Papel: PapelLider, Nome: "Ana", Estado: EstadoPessimo},
		{Destinatario: 3003, Papel: PapelSupervisor, Nome: "Ana", Estado: EstadoPessimo},
	}

	inseridas := d.Dispatch(context.Background(), uuid.New(), rascunhos)
	if inseridas != 1 {
		t.Fatalf("falha em um destinatário não bloqueia os demais: esperava 1 inserida, obteve %d", inseridas)
	}
	if len(store.notificacoes) != 1 || store.notificacoes[0].Destinatario != 3003 {
		t.Errorf("a notificação do supervisor deveria ter sido persistida, obteve %+v", store.notificacoes)
	}
}

func TestCriarTratativaEscopoDoLider(t *testing.T) {
	_, svc := cenarioPadrao()

	_, alerta, err := svc.RegistrarEstado(context.Background(), 1001, "pessimo", "")
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}

	tratativa, err := svc.CriarTratativa(context.Background(), 2002, alerta.ID, "conversa individual agendada")
	if err != nil {
		t.Fatalf("líder da letra deve poder tratar: %v", err)
	}
	if tratativa.Autor != 2002 {
		t.Errorf("autor inesperado: %d", tratativa.Autor)
	}

	outraLetra := uuid.New()
	intruso := repo.Usuario{Matricula: 6006, Nome: "Edu", Perfil: repo.PerfilUsuario, Funcao: comFuncao(repo.FuncaoLider), LetraID: &outraLetra, Ativo: true}
	svc.diretorio.(*stubDiretorio).usuarios[6006] = intruso

	_, err = svc.CriarTratativa(context.Background(), 6006, alerta.ID, "tentativa fora de escopo")
	var naoAutorizado *ErrNaoAutorizado
	if !errors.As(err, &naoAutorizado) {
		t.Fatalf("esperava ErrNaoAutorizado, obteve %v", err)
	}
	if naoAutorizado.Motivo != "líder sem escopo: colaborador de outra letra" {
		t.Errorf("motivo inesperado: %q", naoAutorizado.Motivo)
	}

	tratativas, err := svc.ListTratativas(context.Background(), alerta.ID)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if len(tratativas) != 1 {
		t.Errorf("apenas a tratativa autorizada deve constar, obteve %d", len(tratativas))
	}
}

func TestCriarTratativaDescricaoVazia(t *testing.T) {
	_, svc := cenarioPadrao()

	_, err := svc.CriarTratativa(context.Background(), 2002, uuid.New(), "   ")
	if !errors.Is(err, ErrDescricaoVazia) {
		t.Fatalf("esperava ErrDescricaoVazia, obteve %v", err)
	}
}

func TestResolverAlertaDuasVezes(t *testing.T) {
	_, svc := cenarioPadrao()

	_, alerta, err := svc.RegistrarEstado(context.Background(), 1001, "regular", "")
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}

	resolvido, err := svc.ResolverAlerta(context.Background(), alerta.ID)
	if err != nil {
		t.Fatalf("primeira resolução deve funcionar: %v", err)
	}
	if !resolvido.Resolvido || resolvido.ResolvidoEm == nil {
		t.Errorf("alerta deveria sair resolvido: %+v", resolvido)
	}

	if _, err := svc.ResolverAlerta(context.Background(), alerta.ID); !errors.Is(err, ErrJaResolvido) {
		t.Fatalf("segunda resolução deve falhar com ErrJaResolvido, obteve %v", err)
	}
}

func TestMarcarLidaDeOutroDestinatario(t *testing.T) {
	store, svc := cenarioPadrao()

	_, _, err := svc.RegistrarEstado(context.Background(), 1001, "pessimo", "")
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}

	var doLider Notificacao
	for _, n := range store.notificacoes {
		if n.Destinatario == 2002 {
			doLider = n
		}
	}

	if err := svc.MarcarLida(context.Background(), doLider.ID, 3003); !errors.Is(err, ErrNotifNaoEncontrada) {
		t.Fatalf("notificação de outro destinatário deve ser invisível, obteve %v", err)
	}

	if err := svc.MarcarLida(context.Background(), doLider.ID, 2002); err != nil {
		t.Fatalf("o próprio destinatário deve conseguir marcar como lida: %v", err)
	}

	lidas, err := svc.ListNotificacoes(context.Background(), 2002)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if len(lidas) != 1 || !lidas[0].Lida {
		t.Errorf("esperava notificação lida, obteve %+v", lidas)
	}
}
