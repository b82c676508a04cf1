// Command devtoken mints a bearer token for local testing of an API started
// with AUTH_ENABLED=true.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/spec-kit/messaging-service/internal/auth"
	"github.com/spec-kit/messaging-service/internal/config"
)

func main() {
	userID := flag.Int64("user", 1, "user id placed in the token subject")
	ttl := flag.Int("ttl", 0, "token lifetime in minutes (defaults to AUTH_ACCESS_TOKEN_TTL_MINUTES)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *userID <= 0 {
		log.Fatal("user id must be positive")
	}

	minutes := cfg.Auth.AccessTokenTTLMinutes
	if *ttl > 0 {
		minutes = *ttl
	}
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, minutes)
	token, expiresAt, err := tokens.GenerateToken(*userID)
	if err != nil {
		log.Fatalf("failed to sign token: %v", err)
	}
	fmt.Println(token)
	log.Printf("expires at %s", expiresAt.Format(time.RFC3339))
}
