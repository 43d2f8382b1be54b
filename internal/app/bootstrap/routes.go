// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	administratorsfeature "github.com/dalemusser/himatika/internal/app/features/administrators"
	agendasfeature "github.com/dalemusser/himatika/internal/app/features/agendas"
	answersfeature "github.com/dalemusser/himatika/internal/app/features/answers"
	auditlogfeature "github.com/dalemusser/himatika/internal/app/features/auditlog"
	configfeature "github.com/dalemusser/himatika/internal/app/features/config"
	departementsfeature "github.com/dalemusser/himatika/internal/app/features/departements"
	errorsfeature "github.com/dalemusser/himatika/internal/app/features/errors"
	healthfeature "github.com/dalemusser/himatika/internal/app/features/health"
	loginfeature "github.com/dalemusser/himatika/internal/app/features/login"
	logoutfeature "github.com/dalemusser/himatika/internal/app/features/logout"
	newsfeature "github.com/dalemusser/himatika/internal/app/features/news"
	organizersfeature "github.com/dalemusser/himatika/internal/app/features/organizers"
	photosfeature "github.com/dalemusser/himatika/internal/app/features/photos"
	postsfeature "github.com/dalemusser/himatika/internal/app/features/posts"
	profilesfeature "github.com/dalemusser/himatika/internal/app/features/profiles"
	projectsfeature "github.com/dalemusser/himatika/internal/app/features/projects"
	questionsfeature "github.com/dalemusser/himatika/internal/app/features/questions"
	tagsfeature "github.com/dalemusser/himatika/internal/app/features/tags"
	agendastore "github.com/dalemusser/himatika/internal/app/store/agendas"
	"github.com/dalemusser/himatika/internal/app/store/audit"
	"github.com/dalemusser/himatika/internal/app/system/auditlog"
	"github.com/dalemusser/himatika/internal/app/system/auth"
	"github.com/dalemusser/himatika/internal/app/system/authz"
	"github.com/dalemusser/himatika/internal/app/system/httpx"
	"github.com/dalemusser/himatika/internal/app/system/ratelimit"
	"github.com/dalemusser/himatika/internal/app/system/tokens"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/httputil"
	wafflemw "github.com/dalemusser/waffle/middleware"
	"github.com/dalemusser/waffle/router"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. Himatika builds the token session
// service, applies bearer-token middleware, and mounts the JSON feature
// routers for content, Q&A, profiles and role records.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	codec, err := tokens.NewCodec(appCfg.TokenSecret, appCfg.TokenIssuer)
	if err != nil {
		logger.Error("token codec init failed", zap.Error(err))
		return nil, err
	}

	// Role facts are recomputed per request so board changes take effect
	// without signing in again.
	sessions := auth.NewSessionService(db, codec, authz.NewMongoResolver(db), auth.SessionConfig{
		AccessTTL:  appCfg.AccessTokenTTL,
		RefreshTTL: appCfg.RefreshTokenTTL,
	}, logger)
	mw := auth.NewMiddleware(sessions, logger)

	auditLogger := auditlog.New(audit.New(db), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})
	limiter := ratelimit.NewSigninLimiter(appCfg.SigninRate, appCfg.SigninBurst)

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	httputil.SetJSONLogger(jsonErrorLogger{logger: logger})

	r := newRouter(coreCfg, logger)

	if len(appCfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   appCfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"Retry-After"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Global auth middleware: loads SessionUser into context when the
	// request carries a valid bearer token.
	r.Use(mw.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication: /signin, /refresh, /register, /session
	loginHandler := loginfeature.NewHandler(db, sessions, limiter, auditLogger, errLog, logger)
	r.Mount("/", loginfeature.Routes(loginHandler, mw))

	logoutHandler := logoutfeature.NewHandler(sessions, auditLogger, errLog, logger)
	r.Mount("/signout", logoutfeature.Routes(logoutHandler, mw))

	// Content
	agendaHandler := agendasfeature.NewHandler(db, agendastore.Agendas, "agenda", errLog, logger)
	r.Mount("/agenda", agendasfeature.Routes(agendaHandler, mw))

	eventHandler := agendasfeature.NewHandler(db, agendastore.Events, "event", errLog, logger)
	r.Mount("/event", agendasfeature.Routes(eventHandler, mw))

	projectHandler := projectsfeature.NewHandler(db, errLog, logger)
	r.Mount("/project", projectsfeature.Routes(projectHandler, mw))

	postHandler := postsfeature.NewHandler(db, errLog, logger)
	r.Mount("/post", postsfeature.Routes(postHandler, mw))

	newsHandler := newsfeature.NewHandler(db, errLog, logger)
	r.Mount("/news", newsfeature.Routes(newsHandler, mw))

	photoHandler := photosfeature.NewHandler(db, errLog, logger)
	r.Mount("/photo", photosfeature.Routes(photoHandler, mw))

	// Q&A
	questionHandler := questionsfeature.NewHandler(db, errLog, logger)
	r.Mount("/questions", questionsfeature.Routes(questionHandler, mw))

	answerHandler := answersfeature.NewHandler(db, errLog, logger)
	r.Mount("/answers", answersfeature.Routes(answerHandler, mw))

	tagHandler := tagsfeature.NewHandler(db, errLog, logger)
	r.Mount("/tags", tagsfeature.Routes(tagHandler))

	// Membership and role records
	profileHandler := profilesfeature.NewHandler(db, auditLogger, errLog, logger)
	r.Mount("/profile", profilesfeature.Routes(profileHandler, mw))

	organizerHandler := organizersfeature.NewHandler(db, auditLogger, errLog, logger)
	r.Mount("/organizer", organizersfeature.Routes(organizerHandler, mw))

	administratorHandler := administratorsfeature.NewHandler(db, auditLogger, errLog, logger)
	r.Mount("/administrator", administratorsfeature.Routes(administratorHandler, mw))

	departementHandler := departementsfeature.NewHandler(db, auditLogger, errLog, logger)
	r.Mount("/departement", departementsfeature.Routes(departementHandler, mw))

	configHandler := configfeature.NewHandler(db, auditLogger, errLog, logger)
	r.Mount("/config", configfeature.Routes(configHandler, mw))

	// Audit trail
	auditHandler := auditlogfeature.NewHandler(db, errLog, logger)
	r.Mount("/audit", auditlogfeature.Routes(auditHandler, mw))

	logger.Info("routes mounted", zap.String("base_url", appCfg.BaseURL))
	return r, nil
}

// newRouter returns WAFFLE's base router (request id, real ip, panic
// recovery, compression, metrics and access logging) with JSON bodies
// capped at httpx.MaxBodyBytes and unknown routes answered in the
// himatika error envelope.
func newRouter(coreCfg *config.CoreConfig, logger *zap.Logger) chi.Router {
	r := router.New(coreCfg, logger)
	r.Use(wafflemw.LimitBodySize(httpx.MaxBodyBytes))
	r.NotFound(errorsfeature.NotFound)
	r.MethodNotAllowed(errorsfeature.MethodNotAllowed)
	return r
}

// jsonErrorLogger reports response encoding failures from httputil.
type jsonErrorLogger struct {
	logger *zap.Logger
}

func (l jsonErrorLogger) Error(msg string, args ...any) {
	l.logger.Sugar().Errorw(msg, args...)
}
