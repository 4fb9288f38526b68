package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"pharma-supply/config"
	"pharma-supply/database"
	"pharma-supply/logger"
	"pharma-supply/routes"
	authService "pharma-supply/services/auth"
	"pharma-supply/services/ledger"
	"pharma-supply/services/otp"
	txService "pharma-supply/services/transaction"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration", err)
	}
	if err := logger.Setup(cfg.LogDir, cfg.LogLevel); err != nil {
		logger.Fatal("Failed to set up logging", err)
	}

	db, err := database.InitDB(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to the database", err)
	}
	defer database.Close(db)

	dialCtx, cancelDial := context.WithTimeout(context.Background(), 15*time.Second)
	client, err := ledger.Dial(dialCtx, cfg.RPCURL)
	cancelDial()
	if err != nil {
		logger.Fatal("Failed to dial RPC endpoint", err)
	}
	defer client.Close()

	contractABI, abiPath, err := ledger.LoadABI(cfg.ContractABIPath, filepath.Join("..", cfg.ContractABIPath))
	if err != nil {
		logger.Fatal("Failed to load contract ABI", err)
	}
	logger.Info("Loaded contract ABI from " + abiPath)

	var signer *ledger.Signer
	if strings.TrimSpace(cfg.PrivateKey) != "" {
		signer, err = ledger.NewSigner(client, cfg.PrivateKey, cfg.ChainID)
		if err != nil {
			logger.Fatal("Invalid PRIVATE_KEY", err)
		}
		logger.Success("Signer account: " + signer.Address().Hex())
	} else {
		logger.Warning("PRIVATE_KEY not set, drug write routes will fail")
	}

	gateway := ledger.NewGateway(client, common.HexToAddress(cfg.ContractAddress), contractABI, signer, cfg.ReceiptTimeout)
	auth := authService.NewAuthService(
		db,
		otp.NewOTPService(db),
		authService.NewTokenService(cfg.SecretKey),
		authService.NewPasswordService(),
	)
	recorder := txService.NewRecorder(db, cfg.RevenueOffset())

	app := fiber.New(fiber.Config{
		ReadBufferSize:  32768,
		WriteBufferSize: 32768,
		ReadTimeout:     time.Second * 30,
		// AddDrug blocks until the receipt arrives.
		WriteTimeout: cfg.ReceiptTimeout + 30*time.Second,
		BodyLimit:    4 * 1024 * 1024,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.FrontendURL,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	deps := routes.Dependencies{
		Auth:                 auth,
		Ledger:               gateway,
		Recorder:             recorder,
		EchoOTP:              cfg.OTPEchoInsecure,
		ExposeInternalErrors: cfg.ExposeInternalErrors,
	}
	var asyncLogger *logger.AsyncLogger
	if cfg.RequestLogEnabled {
		asyncLogger = logger.NewAsyncLogger(db)
		go asyncLogger.ProcessLog()
		deps.RequestLog = asyncLogger
	}
	if cfg.OTPEchoInsecure {
		logger.Warning("OTP_ECHO_INSECURE is on, OTP codes are returned in API responses")
	}

	routes.SetupRoutes(app, deps)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Success("Server is running on " + cfg.ListenAddr())
		if err := app.Listen(cfg.ListenAddr()); err != nil {
			logger.Error("Server stopped", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("Graceful shutdown failed", err)
	}
	if asyncLogger != nil {
		asyncLogger.Close()
	}
}
