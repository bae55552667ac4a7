package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// initDatabase creates a fresh database with the schema and an admin
// account. On failure the partial file is removed.
func initDatabase(path, adminUsername string) (password string, err error) {
	if err := model.ValidateUsername(adminUsername); err != nil {
		return "", fmt.Errorf("admin username: %w", err)
	}

	database, err := db.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		database.Close()
		if err != nil {
			os.Remove(path)
		}
	}()

	if err := db.EnsureSchema(database); err != nil {
		return "", fmt.Errorf("ensuring schema: %w", err)
	}

	password, err = generatePassword(16)
	if err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	if _, err := store.CreateUser(context.Background(), database, adminUsername, "", "", string(hash), model.RoleAdmin); err != nil {
		return "", fmt.Errorf("creating admin user: %w", err)
	}
	return password, nil
}

func printInitResult(dbPath, username, password string) {
	fmt.Printf("Database created: %s\n", dbPath)
	fmt.Println()
	fmt.Println("Admin account created:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("Change it with `board login` followed by a password change.")
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}

// purgeRevocations drops expired token revocations now and then every
// interval until ctx is done.
func purgeRevocations(ctx context.Context, database *sql.DB, interval time.Duration) {
	purge := func() {
		n, err := store.PurgeRevokedTokens(ctx, database, time.Now())
		if err != nil {
			slog.Error("failed to purge revoked tokens", "error", err)
			return
		}
		if n > 0 {
			slog.Info("purged expired revocations", "count", n)
		}
	}

	purge()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purge()
		}
	}
}
