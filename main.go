package main

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"sklep/controllers"
	"sklep/cookies"
	"sklep/logger"
	"sklep/middleware"
	"sklep/models"
	"sklep/store"

	"github.com/go-michi/michi"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/gorilla/handlers"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

func main() {
	// Load environment variables
	_ = godotenv.Load()

	logger.Init(os.Getenv("APP_ENV"))
	defer logger.Sync()
	log := logger.L()

	connStr := mustEnv(log, "DATABASE_CONNECTION_STR")
	migRoot := mustEnv(log, "MIGRATIONS_ROOT")
	domain := mustEnv(log, "DOMAIN")
	secret := mustEnv(log, "COOKIE_SECRET")

	// Connect to the database
	db, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		log.Fatal("database connect failed", zap.Error(err))
	}
	defer db.Close()

	// Handle migrations
	mig, err := migrate.New("file://"+migRoot, connStr)
	if err != nil {
		log.Fatal("migrations init failed", zap.Error(err))
	}
	if err := mig.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal("migrations failed", zap.Error(err))
		}
		log.Info("migrations: no change")
	}

	st := store.New(db)
	jar := cookies.NewJar([]byte(secret))

	oauthCfg := &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		RedirectURL:  domain + "/callback",
		Scopes:       []string{"openid", "profile", "email"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.google.com/o/oauth2/v2/auth",
			TokenURL: "https://www.googleapis.com/oauth2/v4/token",
		},
	}

	ctrl := controllers.New(st, jar, oauthCfg, domain, strings.Split(os.Getenv("ADMIN_EMAILS"), ","))

	authed := middleware.Authorize(st, jar)
	admin := middleware.Authorize(st, jar, models.RoleAdmin)

	// Initialize the router and define routes
	r := michi.NewRouter()
	r.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir("./uploads"))))

	r.HandleFunc("GET /{$}", ctrl.Home)
	r.HandleFunc("GET /shop", ctrl.Shop)
	r.HandleFunc("GET /cart", ctrl.CartView)
	r.HandleFunc("GET /checkout", ctrl.CheckoutView)
	r.HandleFunc("POST /checkout", ctrl.CheckoutSubmit)

	r.Route("/cart", func(sub *michi.Router) {
		sub.HandleFunc("POST add/{id}", ctrl.CartAdd)
		sub.HandleFunc("POST increase/{id}", ctrl.CartIncrease)
		sub.HandleFunc("POST decrease/{id}", ctrl.CartDecrease)
		sub.HandleFunc("POST remove/{id}", ctrl.CartRemove)
		sub.HandleFunc("POST apply-promo", ctrl.ApplyPromo)
		sub.HandleFunc("POST remove-promo", ctrl.RemovePromo)
	})

	r.HandleFunc("GET /register", ctrl.RegisterForm)
	r.HandleFunc("POST /register", ctrl.Register)
	r.HandleFunc("GET /login", ctrl.LoginForm)
	r.HandleFunc("POST /login", ctrl.Login)
	r.HandleFunc("GET /callback", ctrl.Callback)
	r.Handle("GET /logout", authed(http.HandlerFunc(ctrl.Logout)))
	r.Handle("GET /account", authed(http.HandlerFunc(ctrl.Account)))

	r.Handle("GET /admin", admin(http.HandlerFunc(ctrl.Panel)))
	r.Handle("POST /admin/add-product", admin(http.HandlerFunc(ctrl.AddProduct)))
	r.Handle("POST /admin/delete-product", admin(http.HandlerFunc(ctrl.DeleteProduct)))
	r.Handle("POST /admin/set-quantity", admin(http.HandlerFunc(ctrl.SetQuantity)))
	r.Handle("POST /admin/add-promo", admin(http.HandlerFunc(ctrl.AddPromo)))
	r.Handle("POST /admin/delete-promo", admin(http.HandlerFunc(ctrl.DeletePromo)))

	// Enable CORS
	corsOptions := handlers.CORS(
		handlers.AllowedOrigins([]string{domain}),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
		handlers.AllowCredentials(),
	)

	chain := corsOptions(middleware.RateLimit(middleware.Logging(middleware.Identify(st, jar)(r))))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	log.Info("server listening", zap.String("port", port))
	if err := http.ListenAndServe(":"+port, chain); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func mustEnv(log *zap.Logger, key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatal("missing required environment variable", zap.String("key", key))
	}
	return v
}
