package http

import (
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/auth"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/http/api"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/http/exts"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/mail"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/search"
	"github.com/dasamritendu619/sharelearner-server/pkg/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

type App struct {
	app *fiber.App
}

func NewServer(db *gorm.DB, store storage.Uploader, mailer mail.Sender, searcher search.Searcher, tokens *auth.Manager) *App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		EnableIPValidation:    true,
		ServerHeader:          "ShareLearner",
		AppName:               "ShareLearner",
		ProxyHeader:           fiber.HeaderXForwardedFor,
		JSONEncoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Marshal,
		JSONDecoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal,
		BodyLimit:             128 * 1024 * 1024,
		EnablePrintRoutes:     viper.GetBool("debug.print_routes"),
		ErrorHandler:          exts.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowCredentials: true,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
	}))
	app.Use(exts.RequestLogger())

	if local, ok := store.(*storage.LocalStorage); ok {
		app.Static("/upload", local.BasePath())
	}

	api.NewController(db, store, mailer, searcher, tokens, viper.GetBool("security.cookie_secure")).
		MapControllers(app, "/api/v1")

	return &App{app}
}

func (v *App) Listen() {
	if err := v.app.Listen(viper.GetString("bind")); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when starting server...")
	}
}

func (v *App) Shutdown() error {
	return v.app.Shutdown()
}
