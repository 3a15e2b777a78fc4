package app

import (
	"database/sql"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-payops/internal/engine"
	"go-payops/internal/formula"
	"go-payops/internal/identity"
	"go-payops/internal/messaging/kafka"
	"go-payops/internal/payattendance"
	"go-payops/internal/payinput"
	"go-payops/internal/period"
	"go-payops/internal/receipt"
	"go-payops/internal/revision"
	"go-payops/internal/salaryhead"
	"go-payops/internal/taxyear"
	"go-payops/internal/travel"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	periodRepo := period.NewRepository(gormDB)
	inputRepo := payinput.NewRepository(gormDB)
	identityRepo := identity.NewRepository(gormDB)
	travelRepo := travel.NewRepository(gormDB)
	attendanceRepo := payattendance.NewRepository(gormDB)
	engineRepo := engine.NewRepository(gormDB)
	receiptRepo := receipt.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	headRepo := salaryhead.NewRepository(gormDB)
	revisionRepo := revision.NewRepository(gormDB)
	taxyearRepo := taxyear.NewRepository(gormDB)

	// --- Engine collaborators ---
	holidays := parseHolidays(os.Getenv("PAYROLL_HOLIDAYS"))
	resolver := identity.NewResolver(identityRepo)
	calculator := travel.NewCalculator(travelRepo, attendanceRepo, holidays)

	// --- Services ---
	periodService := period.NewService(db, periodRepo, inputRepo)
	inputGate := period.NewInputGate(periodRepo)
	inputService := payinput.NewService(db, inputRepo, inputGate)
	identityService := identity.NewService(db, identityRepo)
	engineService := engine.NewService(db, engineRepo, calculator, resolver, formula.DefaultRegistry(), rdb, holidays)
	receiptService := receipt.NewService(db, receiptRepo, periodRepo, outboxRepo)
	attendanceService := payattendance.NewService(db, attendanceRepo, inputGate)
	headService := salaryhead.NewService(headRepo)
	revisionService := revision.NewService(revisionRepo)
	taxyearService := taxyear.NewService(taxyearRepo)
	travelService := travel.NewService(travelRepo)

	// --- Handlers ---
	periodHandler := period.NewHandler(periodService)
	inputHandler := payinput.NewHandler(inputService)
	identityHandler := identity.NewHandler(identityService)
	engineHandler := engine.NewHandler(engineService)
	receiptHandler := receipt.NewHandler(receiptService)
	attendanceHandler := payattendance.NewHandler(attendanceService)
	headHandler := salaryhead.NewHandler(headService)
	revisionHandler := revision.NewHandler(revisionService)
	taxyearHandler := taxyear.NewHandler(taxyearService)
	travelHandler := travel.NewHandler(travelService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		period.RegisterRoutes(api, periodHandler)
		payinput.RegisterRoutes(api, inputHandler)
		identity.RegisterRoutes(api, identityHandler)
		engine.RegisterRoutes(api, engineHandler, rdb)
		receipt.RegisterRoutes(api, receiptHandler, rdb)
		payattendance.RegisterRoutes(api, attendanceHandler)
		salaryhead.RegisterRoutes(api, headHandler)
		revision.RegisterRoutes(api, revisionHandler)
		taxyear.RegisterRoutes(api, taxyearHandler)
		travel.RegisterRoutes(api, travelHandler)
	}

	return nil
}

// parseHolidays reads a comma-separated list of YYYY-MM-DD dates. Malformed
// entries are logged and skipped rather than failing startup.
func parseHolidays(raw string) []time.Time {
	if raw == "" {
		return nil
	}
	var holidays []time.Time
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		day, err := time.Parse("2006-01-02", part)
		if err != nil {
			zap.L().Warn("skipping malformed holiday entry", zap.String("value", part))
			continue
		}
		holidays = append(holidays, day)
	}
	return holidays
}
