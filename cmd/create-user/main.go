// CLI tool to create a user with a bcrypt-hashed password and a default goal
// settings row (maintain, no profile).
// Usage: go run ./cmd/create-user
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"lg/adaptive-tdee-go-api/logger"
	"lg/adaptive-tdee-go-api/store"
)

func main() {
	logger.Init()
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Fatal("error loading .env file", zap.Error(err))
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, os.Getenv("DB_URL"))
	if err != nil {
		logger.Fatal("unable to connect to database", zap.Error(err))
	}
	defer conn.Close(ctx)

	reader := bufio.NewReader(os.Stdin)
	username := prompt(reader, "Username: ")
	email := prompt(reader, "Email: ")
	password := prompt(reader, "Password: ")

	// User and settings row go in together so no user exists without settings.
	tx, err := conn.Begin(ctx)
	if err != nil {
		logger.Fatal("error starting transaction", zap.Error(err))
	}
	defer tx.Rollback(ctx)

	u, err := store.CreateUser(ctx, tx, username, email, password)
	if err != nil {
		logger.Fatal("error creating user", zap.Error(err))
	}
	if err := tx.Commit(ctx); err != nil {
		logger.Fatal("error committing", zap.Error(err))
	}

	fmt.Printf("\nUser created successfully!\n")
	fmt.Printf("  ID:         %d\n", u.ID)
	fmt.Printf("  Username:   %s\n", u.Username)
	fmt.Printf("  Auth Token: %s\n", u.AuthToken)
}

func prompt(r *bufio.Reader, label string) string {
	fmt.Print(label)
	s, _ := r.ReadString('\n')
	return strings.TrimSpace(s)
}
