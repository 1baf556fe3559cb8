package main

import (
	"strconv"
	"time"

	config "github.com/anjiri1684/matrix_mlm/configs"
	"github.com/anjiri1684/matrix_mlm/database"
	"github.com/anjiri1684/matrix_mlm/jobs"
	"github.com/anjiri1684/matrix_mlm/logger"
	"github.com/anjiri1684/matrix_mlm/metrics"
	"github.com/anjiri1684/matrix_mlm/notifications"
	"github.com/anjiri1684/matrix_mlm/routes"
	"github.com/anjiri1684/matrix_mlm/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

type scheduledJob struct {
	name string
	spec string
	run  func()
}

var schedule = []scheduledJob{
	{name: "ledger audit", spec: "@hourly", run: jobs.AuditLedgers},
	{name: "withdrawal reminders", spec: "0 9 * * *", run: jobs.SendWithdrawalReminders},
}

func scheduleJobs(c *cron.Cron, list []scheduledJob) error {
	for _, j := range list {
		if _, err := c.AddFunc(j.spec, j.run); err != nil {
			return errors.Wrapf(err, "schedule %s (%q)", j.name, j.spec)
		}
	}
	return nil
}

func main() {
	logger.Init(config.ConfigOr("LOG_LEVEL", "info"))

	if err := config.LoadBusiness(config.ConfigOr("BUSINESS_CONFIG_PATH", "configs")); err != nil {
		log.Fatalf("🔥 Invalid business configuration: %v", err)
	}

	database.ConnectDB()
	database.Migrate()
	database.SeedRoot()
	database.ConnectRedis()
	notifications.InitEmailService()

	c := cron.New()
	if err := scheduleJobs(c, schedule); err != nil {
		log.Fatalf("🔥 Failed to schedule cron jobs: %v", err)
	}
	go c.Start()
	log.Info("✅ Cron jobs scheduled successfully.")

	go websocket.RunHub()

	app := fiber.New(fiber.Config{
		Prefork:       false,
		AppName:       "Matrix MLM",
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.WithFields(log.Fields{"path": c.Path(), "method": c.Method()}).Errorf("[ERROR] %v", err)
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
				"code":  "HTTP_" + strconv.Itoa(code),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  config.ConfigOr("CORS_ORIGINS", "*"),
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Content-Disposition",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(metrics.Middleware())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to Matrix MLM API",
		})
	})

	routes.Setup(app)

	port := config.ConfigOr("PORT", "8080")
	log.Infof("✅ Server is running on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
