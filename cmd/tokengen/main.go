package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"airtraffic/statboard/internal/common"
	"airtraffic/statboard/internal/config"
	"airtraffic/statboard/internal/constants"
)

// tokengen prints an admin token signed with ADMIN_JWT_SECRET.
func main() {
	subject := flag.String("sub", "ops", "token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	role := flag.String("role", string(constants.RoleAdmin), "token role")
	flag.Parse()

	cfg := config.Load()
	signer := common.NewTokenSigner([]byte(cfg.AdminJWTSecret))
	if !signer.Enabled() {
		log.Fatal("ADMIN_JWT_SECRET is not set")
	}

	token, err := signer.Issue(*subject, constants.Role(*role), *ttl)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}

	fmt.Println("Token:", token)
}
