// Command create-superadmin bootstraps the platform super-admin account.
// There is no public API to create one; run this once after provisioning.
package main

import (
	"context"
	"errors"
	"log"
	"os"

	"crm-backend/internal/database"
	"crm-backend/internal/model"
	"crm-backend/internal/repository"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	username := os.Getenv("SUPER_ADMIN_USERNAME")
	if username == "" {
		username = "superadmin"
	}
	password := os.Getenv("SUPER_ADMIN_PASSWORD")
	if password == "" {
		log.Fatal("SUPER_ADMIN_PASSWORD environment variable is required")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Schema migration failed: %v", err)
	}

	repo := repository.NewSuperAdminRepository(db)
	ctx := context.Background()

	if _, err := repo.GetByUsername(ctx, username); err == nil {
		log.Printf("Super admin %q already exists", username)
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Fatalf("Database error: %v", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	superAdmin := &model.SuperAdmin{
		Username: username,
		Password: string(hashedPassword),
	}
	if err := repo.Create(ctx, superAdmin); err != nil {
		log.Fatalf("Failed to create super admin: %v", err)
	}

	log.Printf("Super admin %q created successfully", username)
}
