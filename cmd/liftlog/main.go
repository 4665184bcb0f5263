package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"liftlog/internal/adapter/firestore"
	adapthttp "liftlog/internal/adapter/http"
	"liftlog/internal/adapter/memory"
	"liftlog/internal/adapter/postgres"
	"liftlog/internal/adapter/sqlite"
	"liftlog/internal/app"
	"liftlog/internal/domain"
)

type store interface {
	domain.WorkoutRepository
	domain.ProgramRepository
	domain.SessionRepository
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "hash-password" {
		if len(os.Args) != 3 {
			log.Fatal("usage: liftlog hash-password <password>")
		}
		hash, err := app.HashPassword(os.Args[2])
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(hash)
		return
	}

	ctx := context.Background()
	addr := env("ADDR", ":8080")
	webDir := env("WEB_DIR", "web")

	loc := time.Local
	if tz := os.Getenv("TZ"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			log.Fatalf("TZ: %v", err)
		}
		loc = l
	}

	db, closeDB, err := openStore(ctx)
	if err != nil {
		log.Fatalf("store open: %v", err)
	}
	defer func() { _ = closeDB() }()

	allow := domain.NewAllowList(splitList(os.Getenv("ALLOWED_EMAILS"))...)
	if allow.Len() == 0 {
		log.Println("ALLOWED_EMAILS is empty; every sign-in will be denied")
	}

	accounts, err := parseAccounts(os.Getenv("LOCAL_ACCOUNTS"))
	if err != nil {
		log.Fatalf("LOCAL_ACCOUNTS: %v", err)
	}

	var oidcCfg adapthttp.OIDCConfig
	if issuer := os.Getenv("OIDC_ISSUER"); issuer != "" {
		oidcCfg, err = adapthttp.NewOIDCConfig(ctx, issuer,
			os.Getenv("OIDC_CLIENT_ID"),
			os.Getenv("OIDC_CLIENT_SECRET"),
			os.Getenv("OIDC_REDIRECT_URL"),
		)
		if err != nil {
			log.Fatalf("oidc: %v", err)
		}
		log.Printf("sso enabled via %s", issuer)
	}

	csrfKey, err := parseKey(os.Getenv("CSRF_KEY"))
	if err != nil {
		log.Fatalf("CSRF_KEY: %v", err)
	}

	authSvc := app.NewAuthService(db, allow, accounts)
	trackers := app.NewRegistry(app.SessionTrackers(app.TrackerDeps{
		Workouts: db,
		Programs: db,
		Allow:    allow,
		Location: loc,
	}, authSvc))

	h := adapthttp.New(authSvc, trackers, oidcCfg, adapthttp.Config{
		WebDir:           webDir,
		TrustForwardAuth: os.Getenv("TRUST_FORWARD_AUTH") == "true",
		CORSOrigins:      splitList(os.Getenv("CORS_ORIGINS")),
		CSRFKey:          csrfKey,
	}).Handler()

	pruneCtx, stopPrune := context.WithCancel(ctx)
	defer stopPrune()
	go pruneSessions(pruneCtx, authSvc, trackers, time.Hour)

	server := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// openStore picks the document store from STORE, defaulting to postgres
// when DATABASE_URL is set and to memory otherwise.
func openStore(ctx context.Context) (store, func() error, error) {
	kind := os.Getenv("STORE")
	if kind == "" {
		kind = "memory"
		if os.Getenv("DATABASE_URL") != "" {
			kind = "postgres"
		}
	}
	log.Printf("using %s store", kind)

	switch kind {
	case "memory":
		return memory.New(), func() error { return nil }, nil
	case "postgres":
		connStr := os.Getenv("DATABASE_URL")
		if connStr == "" {
			return nil, nil, errors.New("DATABASE_URL is required")
		}
		db, err := postgres.Open(connStr)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	case "sqlite":
		db, err := sqlite.Open(env("SQLITE_PATH", "liftlog.db"))
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	case "firestore":
		projectID := os.Getenv("FIRESTORE_PROJECT_ID")
		if projectID == "" {
			return nil, nil, errors.New("FIRESTORE_PROJECT_ID is required")
		}
		fs, err := firestore.Open(ctx, projectID)
		if err != nil {
			return nil, nil, err
		}
		return fs, fs.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE %q", kind)
}

func pruneSessions(ctx context.Context, auth *app.AuthService, trackers *app.Registry, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := auth.PruneExpired(ctx); err != nil {
				log.Printf("prune sessions: %v", err)
			}
			if n := trackers.Prune(app.SessionTTL); n > 0 {
				log.Printf("dropped %d idle trackers", n)
			}
		}
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseAccounts reads "email:bcrypt-hash" pairs separated by commas.
func parseAccounts(s string) ([]domain.Account, error) {
	var out []domain.Account
	for _, entry := range splitList(s) {
		email, hash, ok := strings.Cut(entry, ":")
		if !ok || email == "" || !strings.HasPrefix(hash, "$2") {
			return nil, fmt.Errorf("malformed entry %q", entry)
		}
		out = append(out, domain.Account{Email: email, PasswordHash: hash})
	}
	return out, nil
}

// parseKey accepts a 32-byte key as 64 hex characters or 32 raw bytes.
func parseKey(s string) ([]byte, error) {
	switch len(s) {
	case 0:
		return nil, nil
	case 64:
		return hex.DecodeString(s)
	case 32:
		return []byte(s), nil
	}
	return nil, errors.New("must be 32 bytes or 64 hex characters")
}
