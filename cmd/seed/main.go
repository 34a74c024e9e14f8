// seed inserts local dev fixtures: two users, a group owned by the
// first, and a pending join request from the second.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/tabletophq/groupfinder/internal/infrastructure/postgres"
	"golang.org/x/crypto/bcrypt"
)

const seedPassword = "playtest"

type userSpec struct {
	username string
	email    string
}

var users = []userSpec{
	{"geralt", "geralt@kaermorhen.local"},
	{"jaskier", "jaskier@oxenfurt.local"},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	ids := make([]int64, len(users))
	for i, u := range users {
		err := pool.QueryRow(ctx, `
			INSERT INTO users (username, email, password_hash)
			VALUES ($1, $2, $3)
			ON CONFLICT (email) DO UPDATE SET updated_at = NOW()
			RETURNING id`,
			u.username, u.email, string(hash),
		).Scan(&ids[i])
		if err != nil {
			log.Fatalf("upsert user %s: %v", u.username, err)
		}
	}

	var groupID int64
	err = pool.QueryRow(ctx, `
		INSERT INTO groups (name, description, schedule, location, chronic, master)
		VALUES ('The Witcher', 'Monster hunting on the Continent', 'weekly', 'Kaer Morhen', 'The Path', $1)
		RETURNING id`,
		ids[0],
	).Scan(&groupID)
	if err != nil {
		log.Fatalf("insert group: %v", err)
	}

	if _, err = pool.Exec(ctx, `
		INSERT INTO group_players (group_id, user_id) VALUES ($1, $2)
		ON CONFLICT (group_id, user_id) DO NOTHING`,
		groupID, ids[0],
	); err != nil {
		log.Fatalf("attach master: %v", err)
	}

	if _, err = pool.Exec(ctx, `
		INSERT INTO group_requests (group_id, user_id, status) VALUES ($1, $2, 'PENDING')
		ON CONFLICT (group_id, user_id) DO NOTHING`,
		groupID, ids[1],
	); err != nil {
		log.Fatalf("insert join request: %v", err)
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  Master:    %s (id %d)\n", users[0].email, ids[0])
	fmt.Printf("  Requester: %s (id %d)\n", users[1].email, ids[1])
	fmt.Printf("  Group:     The Witcher (id %d)\n", groupID)
	fmt.Printf("  Password:  %s (both users)\n", seedPassword)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Printf("  curl -s -X POST http://localhost:8080/sessions \\\n")
	fmt.Printf("    -H 'Content-Type: application/json' \\\n")
	fmt.Printf("    -d '{\"email\":\"%s\",\"password\":\"%s\"}'\n", users[0].email, seedPassword)
	fmt.Println()
	fmt.Println("  export JWT=...   # token.token from the response")
	fmt.Printf("  curl -s 'http://localhost:8080/groups/%d/requests?master=%d' -H \"Authorization: Bearer $JWT\"\n", groupID, ids[0])
	fmt.Printf("  curl -s -X POST http://localhost:8080/groups/%d/requests/REQUEST_ID/accept -H \"Authorization: Bearer $JWT\"\n", groupID)
}
