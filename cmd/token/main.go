package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/hostly/ordercore/internal/domain/access"
	"github.com/hostly/ordercore/internal/infrastructure/auth"
	"github.com/hostly/ordercore/internal/infrastructure/config"
	"github.com/hostly/ordercore/internal/infrastructure/logger"
	"go.uber.org/zap"
)

func main() {
	var (
		userID      string
		role        string
		tenantID    string
		displayName string
		ttl         time.Duration
	)
	flag.StringVar(&userID, "user", "", "User id carried in the token (required)")
	flag.StringVar(&role, "role", string(access.RoleStaff), "admin, maintainer, staff or partner")
	flag.StringVar(&tenantID, "tenant", "", "Partner tenant id (required for partners)")
	flag.StringVar(&displayName, "name", "", "Display name")
	flag.DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to jwt.expiration)")
	flag.Parse()

	log, err := logger.New(&logger.Config{Level: "info", Format: "console", Output: "stderr"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync(log) }()

	if userID == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if ttl > 0 {
		cfg.JWT.Expiration = ttl
	}

	issued, err := auth.NewJWTService(cfg.JWT).Generate(access.Principal{
		UserID:      userID,
		Role:        access.Role(role),
		TenantID:    tenantID,
		DisplayName: displayName,
	})
	if err != nil {
		log.Fatal("Failed to issue token", zap.Error(err))
	}
	log.Info("Token issued",
		zap.String("user_id", userID),
		zap.String("role", role),
		zap.Time("expires_at", issued.ExpiresAt))
	fmt.Println(issued.AccessToken)
}
