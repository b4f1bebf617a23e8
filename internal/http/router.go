package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/systemmax/sst/internal/alerta"
	"github.com/systemmax/sst/internal/comite"
	"github.com/systemmax/sst/internal/config"
	httpmiddleware "github.com/systemmax/sst/internal/http/middleware"
	"github.com/systemmax/sst/internal/org"
	"github.com/systemmax/sst/internal/repo"
	"github.com/systemmax/sst/internal/service"
)

// Handler agrega as dependências dos endpoints.
type Handler struct {
	cfg           *config.Config
	pool          *pgxpool.Pool
	redis         *redis.Client
	authService   *service.AuthService
	alertas       *alerta.Service
	comites       *comite.Service
	queries       *repo.Queries
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
}

// NewRouter devolve roteador configurado.
func NewRouter(cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client, authService *service.AuthService) (http.Handler, error) {
	queries := repo.New(pool)
	resolver := org.NewResolver(queries)

	alertaRepo := alerta.NewRepository(pool)
	alertaLogger := log.With().Str("component", "alerta").Logger()
	dispatcher := alerta.NewDispatcher(
		alertaRepo,
		alertaLogger,
		alerta.NewWebhookNotifier(cfg.Notificacao.WebhookURL),
		alerta.NewPushNotifier(cfg.Notificacao.PushURL, cfg.Notificacao.PushToken),
	)
	alertaService := alerta.NewService(alertaRepo, resolver, queries, dispatcher, alertaLogger)

	comiteRepo := comite.NewRepository(pool)
	comiteService := comite.NewService(comiteRepo, queries)

	h := &Handler{
		cfg:           cfg,
		pool:          pool,
		redis:         redisClient,
		authService:   authService,
		alertas:       alertaService,
		comites:       comiteService,
		queries:       queries,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)

		public.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", h.Login)
			auth.Post("/refresh", h.Refresh)
			auth.Post("/logout", h.Logout)
		})
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(authService.JWT()))
		private.Use(httpmiddleware.UserRateLimit(h.authLimiter))

		private.Get("/me", h.Me)

		private.Post("/emociograma", h.RegistrarEmociograma)

		private.Route("/notificacoes", func(n chi.Router) {
			n.Get("/", h.ListNotificacoes)
			n.Post("/{id}/lida", h.MarcarNotificacaoLida)
		})

		private.Route("/alertas", func(a chi.Router) {
			a.With(httpmiddleware.RequirePerfis(repo.PerfilAdmin, repo.PerfilEditor)).Get("/", h.ListAlertas)
			a.With(httpmiddleware.RequirePerfis(repo.PerfilAdmin, repo.PerfilEditor)).Post("/{id}/resolver", h.ResolverAlerta)
			a.Get("/{id}/tratativas", h.ListTratativas)
			a.Post("/{id}/tratativas", h.CriarTratativa)
		})

		private.Route("/comites", func(c chi.Router) {
			c.Get("/", h.ListComites)
			c.Get("/{id}", h.GetComite)
			c.Group(func(m chi.Router) {
				m.Use(httpmiddleware.RequirePerfis(repo.PerfilAdmin, repo.PerfilEditor))
				m.Post("/", h.CriarComite)
				m.Put("/{id}", h.EditarComite)
				m.Delete("/{id}", h.ExcluirComite)
			})
		})

		private.Get("/contratos", h.ListContratos)
	})

	return r, nil
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready valida conexões com Postgres e Redis.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbErr := h.pool.Ping(ctx)
	redisErr := h.redis.Ping(ctx).Err()

	if dbErr != nil || redisErr != nil {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "dependências indisponíveis", map[string]any{
			"db":    errorString(dbErr),
			"redis": errorString(redisErr),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
