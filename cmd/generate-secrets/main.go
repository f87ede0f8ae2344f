package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/dutyroster/schedule-backend/internal/utils"
)

func main() {
	var adminPassword string
	flag.StringVar(&adminPassword, "admin-password", "", "also print a bcrypt hash of this admin password")
	flag.Parse()

	fmt.Println("===========================================")
	fmt.Println("Secret Generator for the duty schedule API")
	fmt.Println("===========================================")
	fmt.Println()

	secret, err := utils.GenerateJWTSecret()
	if err != nil {
		log.Fatalf("Failed to generate secret: %v", err)
	}

	fmt.Println("✅ Secrets generated successfully!")
	fmt.Println()
	fmt.Println("Add these to your .env file:")
	fmt.Println()
	fmt.Printf("JWT_SECRET=%s\n", secret)

	if adminPassword != "" {
		hash, err := utils.HashAdminPassword(adminPassword)
		if err != nil {
			log.Fatalf("Failed to hash admin password: %v", err)
		}
		// single quotes keep godotenv from expanding the $ segments of the hash
		fmt.Printf("ADMIN_PASSWORD_HASH='%s'\n", hash)
	}

	fmt.Println()
	fmt.Println("⚠️  IMPORTANT: Keep these secrets safe and never commit them to version control!")
	fmt.Println("===========================================")
}
