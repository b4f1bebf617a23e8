package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/systemmax/sst/internal/auth"
	"github.com/systemmax/sst/internal/repo"
)

var (
	// ErrInvalidCredentials indica e-mail ou senha incorretos.
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	// ErrAccountDisabled indica colaborador desativado.
	ErrAccountDisabled = errors.New("colaborador desativado")
)

const refreshKeyPrefix = "refresh:"

// LoginResult agrega tokens e perfil após autenticação.
type LoginResult struct {
	AccessToken   string
	RefreshToken  string
	RefreshExpiry time.Time
	Profile       repo.Usuario
}

// AuthService autentica colaboradores e gerencia sessões de refresh.
type AuthService struct {
	queries    *repo.Queries
	redis      *redis.Client
	jwt        *auth.JWTManager
	refreshTTL time.Duration
}

// NewAuthService cria o serviço de autenticação.
func NewAuthService(queries *repo.Queries, redisClient *redis.Client, jwtManager *auth.JWTManager, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		queries:    queries,
		redis:      redisClient,
		jwt:        jwtManager,
		refreshTTL: refreshTTL,
	}
}

// JWT expõe o gerenciador para o middleware de autenticação.
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// Login autentica por e-mail e senha.
func (s *AuthService) Login(ctx context.Context, email, senha string) (*LoginResult, error) {
	usuario, err := s.queries.GetUsuarioByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.Verify(senha, usuario.SenhaHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if !usuario.Ativo {
		return nil, ErrAccountDisabled
	}

	return s.issueTokens(ctx, usuario)
}

// Refresh rotaciona os tokens a partir de um refresh válido.
func (s *AuthService) Refresh(ctx context.Context, raw string) (*LoginResult, error) {
	key := refreshKeyPrefix + auth.HashRefreshToken(raw)

	val, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, auth.ErrInvalidRefresh
		}
		return nil, err
	}

	matricula, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return nil, auth.ErrInvalidRefresh
	}

	usuario, err := s.queries.GetUsuario(ctx, matricula)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, auth.ErrInvalidRefresh
		}
		return nil, err
	}
	if !usuario.Ativo {
		return nil, ErrAccountDisabled
	}

	// rotação: o refresh antigo deixa de valer imediatamente
	_ = s.redis.Del(ctx, key)

	return s.issueTokens(ctx, usuario)
}

// Logout revoga o refresh token atual.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	key := refreshKeyPrefix + auth.HashRefreshToken(raw)
	return s.redis.Del(ctx, key).Err()
}

// GetMe carrega o perfil do colaborador autenticado.
func (s *AuthService) GetMe(ctx context.Context, matricula int64) (repo.Usuario, error) {
	return s.queries.GetUsuario(ctx, matricula)
}

func (s *AuthService) issueTokens(ctx context.Context, usuario repo.Usuario) (*LoginResult, error) {
	funcao := ""
	if usuario.Funcao != nil {
		funcao = *usuario.Funcao
	}

	access, _, err := s.jwt.GenerateAccessToken(usuario.Matricula, usuario.Perfil, funcao)
	if err != nil {
		return nil, err
	}

	raw, hashed, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	key := refreshKeyPrefix + hashed
	val := fmt.Sprintf("%d", usuario.Matricula)
	if err := s.redis.Set(ctx, key, val, s.refreshTTL).Err(); err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:   access,
		RefreshToken:  raw,
		RefreshExpiry: time.Now().Add(s.refreshTTL),
		Profile:       usuario,
	}, nil
}
