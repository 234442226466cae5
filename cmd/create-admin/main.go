package main

import (
	"agency_site_go/config"
	"agency_site_go/db"
	"agency_site_go/models"
	"agency_site_go/services"
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"
	"gorm.io/gorm"
)

func main() {
	// Load configuration
	cfg := config.Load()

	conn, err := db.Open(db.Options{
		Path:        cfg.DBPath,
		TursoURL:    cfg.TursoDatabaseURL,
		TursoToken:  cfg.TursoAuthToken,
		Environment: cfg.Environment,
	})
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	handle := db.NewHandle()
	handle.Attach(conn)
	defer handle.Close()

	if err := db.AutoMigrate(conn, &models.AdminUser{}, &models.Session{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create Admin ===")
	fmt.Println()

	fmt.Print("Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)

	fmt.Print("Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.ToLower(strings.TrimSpace(email))

	// Get password securely
	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		log.Fatalf("Failed to read password: %v", err)
	}
	fmt.Println()

	fmt.Print("Repeat password: ")
	repeatBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		log.Fatalf("Failed to read password: %v", err)
	}
	fmt.Println()

	password := string(passwordBytes)
	if password != string(repeatBytes) {
		log.Fatal("Passwords do not match")
	}
	if email == "" || !services.IsValidEmail(email) {
		log.Fatal("A valid email is required")
	}
	if err := services.ValidateAdminPassword(email, password); err != nil {
		log.Fatalf("Password rejected:\n%v", err)
	}

	var existing models.AdminUser
	err = conn.Where("email = ?", email).First(&existing).Error
	if err == nil {
		log.Fatalf("Admin with email %s already exists", email)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Fatalf("Failed to check for existing admin: %v", err)
	}

	admin, err := services.CreateAdminUser(context.Background(), conn, name, email, password)
	if err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}

	services.LogSecurityEvent("ADMIN_CREATED", admin.Email, "via create-admin")
	fmt.Println()
	fmt.Println("✅ Admin created successfully!")
	fmt.Printf("   ID:    %s\n", admin.ID)
	fmt.Printf("   Name:  %s\n", admin.Name)
	fmt.Printf("   Email: %s\n", admin.Email)
}
