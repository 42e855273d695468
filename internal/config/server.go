package config

import (
	"FaceAttendance/database/mongodb"
	"FaceAttendance/database/postgres"
	attendanceHandler "FaceAttendance/internal/api/attendance/handler"
	attendanceRepository "FaceAttendance/internal/api/attendance/repository"
	attendanceService "FaceAttendance/internal/api/attendance/service"
	"FaceAttendance/internal/api/events"
	eventsHandler "FaceAttendance/internal/api/events/handler"
	faceHandler "FaceAttendance/internal/api/face/handler"
	faceRepository "FaceAttendance/internal/api/face/repository"
	faceService "FaceAttendance/internal/api/face/service"
	greetingHandler "FaceAttendance/internal/api/greeting/handler"
	greetingService "FaceAttendance/internal/api/greeting/service"
	recognitionHandler "FaceAttendance/internal/api/recognition/handler"
	recognitionService "FaceAttendance/internal/api/recognition/service"
	"FaceAttendance/internal/middleware"
	"FaceAttendance/internal/observability"
	"FaceAttendance/internal/web"
	"FaceAttendance/pkg/audio"
	"FaceAttendance/pkg/gemini"
	"FaceAttendance/pkg/luxand"
	"FaceAttendance/pkg/openai"
	"FaceAttendance/pkg/redis"
	"FaceAttendance/pkg/s3"
	"FaceAttendance/pkg/utils"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine         *fiber.App
	cfg            *AppConfig
	log            *logrus.Logger
	middleware     middleware.Middleware
	validator      *validator.Validate
	utils          utils.IUtils
	handlers       []handler
	faceRepo       faceRepository.Repository
	attendanceRepo attendanceRepository.Repository
	pingStore      func(ctx context.Context) error
	closers        []func(ctx context.Context) error
	luxandClient   luxand.ILuxand
	hub            *events.Hub
	redisServer    redis.IRedis
	s3Client       s3.ItfS3
	chatClient     openai.IChatGPT
	geminiClient   gemini.IGemini
	ttsClient      audio.ITTS
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			server.release(context.Background())
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if err := server.validate(); err != nil {
		server.release(context.Background())
		return nil, err
	}

	return server, nil
}

func (s *Server) validate() error {
	if s.engine == nil {
		return fmt.Errorf("fiber app is required")
	}
	if s.log == nil {
		return fmt.Errorf("logger is required")
	}
	if s.cfg == nil {
		return fmt.Errorf("config is required")
	}
	if s.faceRepo == nil || s.attendanceRepo == nil {
		return fmt.Errorf("store is required")
	}
	return nil
}

// release closes every client opened so far, newest first.
func (s *Server) release(ctx context.Context) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil && s.log != nil {
			s.log.WithFields(logrus.Fields{
				"error": err.Error(),
			}).Warn("Failed to release resource")
		}
	}
	s.closers = nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithConfig(cfg *AppConfig) ServerOption {
	return func(s *Server) error {
		s.cfg = cfg
		return nil
	}
}

// WithStore opens the backend named by STORE_DRIVER and builds both
// repositories on it.
func WithStore(ctx context.Context) ServerOption {
	return func(s *Server) error {
		if s.cfg == nil || s.log == nil {
			return fmt.Errorf("config and logger must be initialized before store")
		}

		switch s.cfg.Store.Driver {
		case "", "mongo", "mongodb":
			db, err := mongodb.New(ctx, s.cfg.Mongo.URI, s.cfg.Mongo.Database, s.log)
			if err != nil {
				s.log.Errorf("Failed to connect to MongoDB: %v", err)
				return fmt.Errorf("failed to create mongodb connection: %w", err)
			}
			s.faceRepo = faceRepository.New(db.Database, s.log)
			s.attendanceRepo = attendanceRepository.New(db.Database, s.log)
			s.pingStore = db.Ping
			s.closers = append(s.closers, db.Close)

		case "postgres":
			db, err := postgres.New(postgres.Config{
				Host:     s.cfg.Postgres.Host,
				Port:     s.cfg.Postgres.Port,
				User:     s.cfg.Postgres.User,
				Password: s.cfg.Postgres.Password,
				Name:     s.cfg.Postgres.Name,
				SSLMode:  s.cfg.Postgres.SSLMode,
			})
			if err != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
				return fmt.Errorf("failed to create database connection: %w", err)
			}
			s.faceRepo = faceRepository.NewPostgres(db, s.log)
			s.attendanceRepo = attendanceRepository.NewPostgres(db, s.log)
			s.pingStore = db.PingContext
			s.closers = append(s.closers, func(context.Context) error { return db.Close() })

		default:
			return fmt.Errorf("unknown STORE_DRIVER %q", s.cfg.Store.Driver)
		}

		s.log.WithFields(logrus.Fields{
			"driver": s.cfg.Store.Driver,
		}).Info("Store initialized")
		return nil
	}
}

// WithRepositories injects prebuilt repositories instead of opening a store.
func WithRepositories(faces faceRepository.Repository, attendance attendanceRepository.Repository) ServerOption {
	return func(s *Server) error {
		s.faceRepo = faces
		s.attendanceRepo = attendance
		s.pingStore = func(context.Context) error { return nil }
		return nil
	}
}

func WithLuxand() ServerOption {
	return func(s *Server) error {
		if s.cfg == nil {
			return fmt.Errorf("config must be initialized before luxand client")
		}
		if s.cfg.Luxand.Token == "" && s.log != nil {
			s.log.Warn("LUXAND_API_TOKEN is empty; provider calls will be rejected")
		}
		s.luxandClient = luxand.New(luxand.Config{
			BaseURL: s.cfg.Luxand.APIURL,
			Token:   s.cfg.Luxand.Token,
			Timeout: s.cfg.LuxandTimeout(),
			Observe: observability.ObserveProvider,
		})
		return nil
	}
}

func WithLuxandClient(client luxand.ILuxand) ServerOption {
	return func(s *Server) error {
		s.luxandClient = client
		return nil
	}
}

func WithEventHub() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before event hub")
		}
		s.hub = events.NewHub(s.log)
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		rps, burst := 0, 0
		if s.cfg != nil {
			rps, burst = s.cfg.RateLimit.RPS, s.cfg.RateLimit.Burst
		}
		s.middleware = middleware.New(s.log, rps, burst)
		return nil
	}
}

// WithRedisServer is a no-op unless REDIS_ADDRESS is set.
func WithRedisServer() ServerOption {
	return func(s *Server) error {
		if s.cfg == nil || s.cfg.Redis.Address == "" {
			return nil
		}
		client := redis.New(redis.Config{
			Address:  s.cfg.Redis.Address,
			Password: s.cfg.Redis.Password,
			DB:       s.cfg.Redis.DB,
		}, s.log)
		s.redisServer = client
		s.closers = append(s.closers, func(context.Context) error { return client.Close() })
		return nil
	}
}

// WithS3Client is a no-op unless AWS_BUCKET_NAME is set.
func WithS3Client() ServerOption {
	return func(s *Server) error {
		if s.cfg == nil || s.cfg.AWS.BucketName == "" {
			return nil
		}
		client, err := s3.New(s3.Config{
			Region:          s.cfg.AWS.Region,
			AccessKeyID:     s.cfg.AWS.AccessKeyID,
			SecretAccessKey: s.cfg.AWS.SecretAccessKey,
			BucketName:      s.cfg.AWS.BucketName,
		})
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

func WithOpenAI() ServerOption {
	return func(s *Server) error {
		if s.cfg == nil || s.cfg.OpenAI.APIKey == "" {
			return nil
		}
		s.chatClient = openai.NewChatGPT(openai.Config{
			APIKey:    s.cfg.OpenAI.APIKey,
			Model:     s.cfg.OpenAI.ChatModel,
			MaxTokens: s.cfg.OpenAI.MaxTokens,
		})
		return nil
	}
}

func WithGeminiClient(ctx context.Context) ServerOption {
	return func(s *Server) error {
		if s.cfg == nil || s.cfg.Gemini.APIKey == "" {
			return nil
		}
		client, err := gemini.NewGeminiClient(ctx, gemini.Config{
			APIKey:    s.cfg.Gemini.APIKey,
			ModelName: s.cfg.Gemini.ModelName,
			MaxTokens: int32(s.cfg.OpenAI.MaxTokens),
		})
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to create Gemini client: %v", err)
			}
			return fmt.Errorf("failed to create Gemini client: %w", err)
		}
		s.geminiClient = client
		s.closers = append(s.closers, func(context.Context) error { return client.Close() })
		return nil
	}
}

func WithTTS() ServerOption {
	return func(s *Server) error {
		if s.cfg == nil || s.cfg.ElevenLabs.APIKey == "" {
			return nil
		}
		s.ttsClient = audio.NewTTSService(audio.Config{
			APIKey:  s.cfg.ElevenLabs.APIKey,
			VoiceID: s.cfg.ElevenLabs.VoiceID,
			BaseURL: s.cfg.ElevenLabs.APIURL,
		})
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() error {
	location, err := s.cfg.Location()
	if err != nil {
		return err
	}

	var publisher events.Publisher
	if s.hub != nil {
		publisher = s.hub
	}

	// Face Domain
	faceServices := faceService.NewFaceService(s.log, s.faceRepo, s.luxandClient, publisher, s.utils)
	faceHandlers := faceHandler.New(s.log, s.validator, s.middleware, faceServices)

	// Attendance Domain
	attendanceServices := attendanceService.NewAttendanceService(
		s.log, s.attendanceRepo, s.faceRepo, s.luxandClient, s.s3Client, publisher, s.utils,
		attendanceService.Rooms{
			AttendanceRoomID: s.cfg.Recognition.AttendanceRoomID,
			CheckoutRoomID:   s.cfg.Recognition.CheckoutRoomID,
		})
	attendanceHandlers := attendanceHandler.New(s.log, s.validator, s.middleware, attendanceServices)

	// Recognition
	recognitionServices := recognitionService.NewRecognitionService(
		s.log, s.luxandClient, faceServices, attendanceServices, s.redisServer, publisher, s.utils,
		recognitionService.Config{
			Threshold:           s.cfg.Recognition.Threshold,
			TrackedRoomID:       s.cfg.Recognition.TrackedRoomID,
			AttendanceRoomID:    s.cfg.Recognition.AttendanceRoomID,
			CheckoutHour:        s.cfg.Recognition.CheckoutHour,
			Location:            location,
			DisableProviderSync: s.cfg.Recognition.DisableProviderSync,
			DedupWindow:         s.cfg.DedupWindow(),
			SearchVersion:       s.cfg.Luxand.SearchVersion,
		})
	recognitionHandlers := recognitionHandler.New(s.log, s.middleware, recognitionServices)

	// Greeting
	greetingServices := greetingService.NewGreetingService(s.log, s.chatClient, s.geminiClient, s.ttsClient, location)
	greetingHandlers := greetingHandler.New(s.log, s.validator, s.middleware, greetingServices)

	s.handlers = append(s.handlers, faceHandlers, attendanceHandlers, recognitionHandlers, greetingHandlers)
	if s.hub != nil {
		s.handlers = append(s.handlers, eventsHandler.New(s.log, s.hub))
	}

	s.setupHealthCheck()
	return nil
}

// Routes mounts every handler without listening, so tests can drive the
// app through fiber's Test helper.
func (s *Server) Routes() {
	router := s.engine.Group("/api/v1")
	router.Use(
		s.middleware.NewRequestIDMiddleware(),
		s.middleware.NewLoggingMiddleware(),
		s.middleware.NewMetricsMiddleware(),
	)

	for _, h := range s.handlers {
		h.Start(router)
	}

	s.engine.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	s.engine.Use("/", filesystem.New(filesystem.Config{
		Root:   http.FS(web.Static()),
		Index:  "index.html",
		Browse: false,
	}))
}

func (s *Server) Run(ctx context.Context) error {
	if s.hub != nil {
		go s.hub.Run(ctx)
	}

	s.Routes()

	return s.engine.Listen(fmt.Sprintf(":%s", s.cfg.AppPort))
}

// Shutdown stops the listener and then releases every client the options
// opened, in reverse order.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.engine.ShutdownWithContext(ctx)
	s.release(ctx)
	return err
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})

	s.engine.Get("/health/ready", func(ctx *fiber.Ctx) error {
		c, cancel := context.WithTimeout(ctx.UserContext(), 3*time.Second)
		defer cancel()

		if err := s.pingStore(c); err != nil {
			s.log.WithFields(logrus.Fields{
				"error": err.Error(),
			}).Warn("Readiness check failed")
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"message": "Store is unreachable",
			})
		}

		// A redis failure is reported but does not fail readiness.
		if s.redisServer != nil {
			if err := s.redisServer.Ping(c); err != nil {
				s.log.WithFields(logrus.Fields{
					"error": err.Error(),
				}).Warn("Redis ping failed during readiness check")
				return ctx.JSON(fiber.Map{
					"message": "Server is Ready!",
					"redis":   "unreachable",
				})
			}
		}

		return ctx.JSON(fiber.Map{
			"message": "Server is Ready!",
		})
	})
}
