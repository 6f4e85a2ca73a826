// Foodgram is a recipe sharing service: users publish recipes, follow
// authors, collect favorites, and turn their shopping basket into an
// aggregated ingredient list.
//
// @title Foodgram API
// @version 1.0
// @description Recipe sharing platform: recipes, tags, ingredients, favorites, subscriptions and shopping lists.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/user/foodgram-go/apperror"
	"github.com/user/foodgram-go/auth"
	"github.com/user/foodgram-go/catalog"
	"github.com/user/foodgram-go/config"
	"github.com/user/foodgram-go/db"
	_ "github.com/user/foodgram-go/docs" // Generated Swagger docs
	"github.com/user/foodgram-go/media"
	"github.com/user/foodgram-go/metrics"
	"github.com/user/foodgram-go/recipes"
	"github.com/user/foodgram-go/users"
)

func main() {
	root := &cobra.Command{
		Use:           "foodgram",
		Short:         "Foodgram recipe sharing API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), loadIngredientsCmd())

	if err := root.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// bootstrap loads the environment, configuration and database pool shared
// by every command.
func bootstrap() (*config.AppConfig, *pgxpool.Pool, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading it: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	pool, err := db.NewPool(cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	return cfg, pool, nil
}

func serveCmd() *cobra.Command {
	var migrationsPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, pool, err := bootstrap()
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := db.RunMigrations(cfg.DB, migrationsPath); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			return serve(cfg, pool)
		},
	}
	cmd.Flags().StringVar(&migrationsPath, "migrations", "./db/migrations", "path to the migration files")
	return cmd
}

func loadIngredientsCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "load-ingredients",
		Short: "Seed the ingredient dictionary from a CSV or JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, pool, err := bootstrap()
			if err != nil {
				return err
			}
			defer pool.Close()

			entries, err := catalog.LoadIngredientsFile(file)
			if err != nil {
				return err
			}
			inserted, err := catalog.NewService(pool).ImportIngredients(cmd.Context(), entries)
			if err != nil {
				return err
			}
			log.Printf("Loaded %d ingredients (%d new)", len(entries), inserted)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to the ingredients file (.csv or .json)")
	cmd.MarkFlagRequired("file")
	return cmd
}

// serve assembles the router and runs the HTTP server until interrupted.
func serve(cfg *config.AppConfig, pool *pgxpool.Pool) error {
	mediaStore := media.NewStore(cfg.Media.Root, cfg.Server.BaseURL)

	authService := auth.NewService(pool, *cfg.Auth)
	authHandlers := auth.NewHandlers(authService)

	userService := users.NewService(pool, mediaStore)
	userHandlers := users.NewHandlers(userService, cfg.Server.BaseURL)

	catalogService := catalog.NewService(pool)
	catalogHandlers := catalog.NewHandlers(catalogService)

	recipeService := recipes.NewService(pool, mediaStore, userService, cfg.Server.BaseURL)
	recipeHandlers := recipes.NewHandlers(recipeService, cfg.Server.BaseURL)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(metrics.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Panics become JSON 500s instead of empty bodies.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			defer func() {
				if rvr := recover(); rvr != nil {
					log.Printf("Panic: %+v", rvr)
					auth.WriteError(ww, req, apperror.NewInternalError("internal server error", nil))
				}
			}()
			next.ServeHTTP(ww, req)
		})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Handle("/metrics", metrics.Handler())

	fileServer := http.StripPrefix("/media/", http.FileServer(http.Dir(mediaStore.Root())))
	r.Get("/media/*", fileServer.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth/token", func(r chi.Router) {
			r.Post("/login/", authHandlers.HandleLogin())
			r.Post("/refresh/", authHandlers.HandleRefresh())
			r.With(auth.RequireUser(cfg.Auth)).Post("/logout/", authHandlers.HandleLogout())
		})

		r.Route("/users", func(r chi.Router) {
			r.With(auth.MaybeUser(cfg.Auth)).Get("/", userHandlers.HandleList())
			r.Post("/", userHandlers.HandleRegister())
			r.With(auth.MaybeUser(cfg.Auth)).Get("/{id}/", userHandlers.HandleRetrieve())

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireUser(cfg.Auth))
				r.Get("/me/", userHandlers.HandleMe())
				r.Put("/me/avatar/", userHandlers.HandleUpdateAvatar())
				r.Delete("/me/avatar/", userHandlers.HandleDeleteAvatar())
				r.Post("/set_password/", userHandlers.HandleSetPassword())
				r.Get("/subscriptions/", userHandlers.HandleSubscriptions())
				r.Post("/{id}/subscribe/", userHandlers.HandleSubscribe())
				r.Delete("/{id}/subscribe/", userHandlers.HandleUnsubscribe())
			})
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", catalogHandlers.HandleListTags())
			r.Get("/{id}/", catalogHandlers.HandleGetTag())
		})
		r.Route("/ingredients", func(r chi.Router) {
			r.Get("/", catalogHandlers.HandleListIngredients())
			r.Get("/{id}/", catalogHandlers.HandleGetIngredient())
		})

		r.Route("/recipes", func(r chi.Router) {
			r.With(auth.MaybeUser(cfg.Auth)).Get("/", recipeHandlers.HandleList())
			r.With(auth.MaybeUser(cfg.Auth)).Get("/{id}/", recipeHandlers.HandleGet())
			r.Get("/{id}/get-link/", recipeHandlers.HandleGetLink())

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireUser(cfg.Auth))
				r.Post("/", recipeHandlers.HandleCreate())
				r.Patch("/{id}/", recipeHandlers.HandleUpdate())
				r.Delete("/{id}/", recipeHandlers.HandleDelete())
				r.Post("/{id}/favorite/", recipeHandlers.HandleFavorite())
				r.Delete("/{id}/favorite/", recipeHandlers.HandleUnfavorite())
				r.Post("/{id}/shopping_cart/", recipeHandlers.HandleAddToBasket())
				r.Delete("/{id}/shopping_cart/", recipeHandlers.HandleRemoveFromBasket())
				r.Get("/download_shopping_cart/", recipeHandlers.HandleDownloadShoppingList())
			})
		})
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Println("Server stopped gracefully")
	return nil
}
