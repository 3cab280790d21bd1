// Команда token выпускает JWT для локальной разработки:
//
//	JWT_SECRET=... go run ./cmd/token -user alice
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/SergeiKhy/url-analytics/internal/auth"
	"github.com/SergeiKhy/url-analytics/internal/config"
)

func main() {
	userID := flag.String("user", "", "user id to put into the token subject")
	flag.Parse()

	if *userID == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	token, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL).Sign(*userID)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	fmt.Println(token)
}
