package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"hostelms/internal/config"
	"hostelms/internal/database"
	"hostelms/internal/middleware"
	"hostelms/internal/modules/allotment"
	"hostelms/internal/modules/identity"
	"hostelms/internal/modules/room"
	jwtsvc "hostelms/internal/pkg/jwt"
	"hostelms/internal/repository"
	"hostelms/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadRuntimeConfig()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is empty")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	hostelRepo := repository.NewHostelRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	requestRepo := repository.NewRoomRequestRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)

	files, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		log.Fatal(err)
	}

	identityService := identity.NewService(userRepo, j)
	identityHandler := identity.NewHandler(identityService)

	allotmentService := allotment.NewService(
		db,
		hostelRepo,
		roomRepo,
		studentRepo,
		requestRepo,
		userRepo,
		identityService,
		files,
		cfg.CapacityCeiling,
	)
	allotmentHandler := allotment.NewHandler(allotmentService)

	roomService := room.NewService(roomRepo)
	roomHandler := room.NewHandler(roomService)

	r := gin.Default()
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		// public
		identityHandler.RegisterRoutes(v1)
		allotmentHandler.RegisterRoutes(v1)

		// authenticated
		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(j))
		{
			identityHandler.RegisterProtectedRoutes(protected)
			allotmentHandler.RegisterProtectedRoutes(protected)

			admin := protected.Group("/")
			admin.Use(middleware.AdminOnly())
			{
				allotmentHandler.RegisterAdminRoutes(admin)
				roomHandler.RegisterAdminRoutes(admin)
			}
		}
	}

	log.Printf("listening on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal(err)
	}
}
