// Command seed creates the initial admin account and, optionally, demo posts.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"blog-platform/internal/config"
	"blog-platform/internal/database"
	"blog-platform/internal/engine"
	"blog-platform/internal/engine/actors"
	"blog-platform/internal/models"
	"blog-platform/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminUsername = "admin"
	adminEmail    = "admin@blog.com"
)

func main() {
	var createAdmin bool
	var demoPosts int
	var author string
	flag.BoolVar(&createAdmin, "admin", true, "create the admin account if no admin exists")
	flag.IntVar(&demoPosts, "demo-posts", 0, "number of generated posts to create")
	flag.StringVar(&author, "author", adminUsername, "username of the admin who authors demo posts")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := utils.NewLogger(utils.LoggerOptions{Format: cfg.LogFormat, Debug: cfg.Debug})

	ctx := context.Background()
	db, err := database.NewMongoDB(ctx, cfg.Database.URI, cfg.Database.Name, cfg.Database.ConnectTimeout)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	err = run(ctx, cfg, db, logger, createAdmin, demoPosts, author)
	if closeErr := db.Close(context.Background()); closeErr != nil {
		logger.Warn("database disconnect error", "error", closeErr)
	}
	if err != nil {
		log.Fatalf("Seed failed: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, db *database.MongoDB, logger *slog.Logger, createAdmin bool, demoPosts int, author string) error {
	if err := db.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	if createAdmin {
		if _, err := ensureAdmin(ctx, db, adminPassword()); err != nil {
			return fmt.Errorf("failed to create admin: %w", err)
		}
	}
	if demoPosts <= 0 {
		return nil
	}

	admin, err := demoAuthor(ctx, db, author)
	if err != nil {
		return err
	}

	eng := engine.NewEngine(actor.NewActorSystem(), db, utils.NewMetricsCollector(), logger, cfg.Server.RequestTimeout)
	defer eng.Stop()

	start := time.Now()
	if err := seedPosts(eng, admin.ID, demoPosts); err != nil {
		return fmt.Errorf("failed to seed posts: %w", err)
	}
	logger.Info("seeded demo posts", "count", demoPosts, "author", admin.Username, "duration", time.Since(start).Truncate(time.Millisecond))
	return nil
}

// demoAuthor looks up the account that will own generated posts. It must be an admin.
func demoAuthor(ctx context.Context, store database.UserStore, username string) (*models.User, error) {
	user, err := store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("demo posts need an existing author %q: %w", username, err)
	}
	if !user.IsAdmin() {
		return nil, fmt.Errorf("demo post author %q is not an admin", username)
	}
	return user, nil
}

func adminPassword() string {
	if pw := os.Getenv("ADMIN_PASSWORD"); pw != "" {
		return pw
	}
	return "admin123"
}

// ensureAdmin creates the admin account unless an admin already exists, in
// which case it returns nil and changes nothing.
func ensureAdmin(ctx context.Context, store database.UserStore, password string) (*models.User, error) {
	exists, err := store.HasAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if exists {
		log.Println("Admin user already exists")
		return nil, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	admin := &models.User{
		ID:             uuid.New(),
		Username:       adminUsername,
		Email:          adminEmail,
		HashedPassword: string(hash),
		Role:           models.RoleAdmin,
		CreatedAt:      time.Now().UTC(),
	}
	if err := store.CreateUser(ctx, admin); err != nil {
		return nil, err
	}
	log.Printf("Admin user created: %s / %s", adminUsername, adminEmail)
	return admin, nil
}

func seedPosts(eng *engine.Engine, authorID uuid.UUID, n int) error {
	gofakeit.Seed(time.Now().UnixNano())
	for i := 0; i < n; i++ {
		status := models.StatusPublished
		if gofakeit.Number(1, 5) == 1 {
			status = models.StatusDraft
		}
		_, err := eng.CreatePost(&actors.CreatePostMsg{
			Title:    gofakeit.Sentence(5),
			Content:  gofakeit.Paragraph(3, 4, 12, "\n\n"),
			Excerpt:  gofakeit.Sentence(15),
			AuthorID: authorID,
			Tags:     []string{gofakeit.Word(), gofakeit.ProgrammingLanguage()},
			Status:   status,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
