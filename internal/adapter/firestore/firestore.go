// Package firestore implements the domain repositories on Cloud Firestore.
// Workouts live in one collection keyed "<userId>_<date>", programs in
// another keyed by user id.
package firestore

import (
	"context"
	"time"

	"liftlog/internal/domain"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	workoutsCollection = "workouts"
	programsCollection = "programs"
	sessionsCollection = "sessions"
)

// Store implements the repositories on a Firestore client.
type Store struct {
	client *firestore.Client
}

var (
	_ domain.WorkoutRepository = (*Store)(nil)
	_ domain.ProgramRepository = (*Store)(nil)
	_ domain.SessionRepository = (*Store)(nil)
)

// Open creates a client for projectID. The client talks to the emulator
// when FIRESTORE_EMULATOR_HOST is set.
func Open(ctx context.Context, projectID string) (*Store, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &Store{client: client}, nil
}

// Close releases the client.
func (s *Store) Close() error {
	return s.client.Close()
}

// ListWorkouts returns every workout whose userId field equals userID.
func (s *Store) ListWorkouts(ctx context.Context, userID string) ([]domain.Workout, error) {
	docs, err := s.client.Collection(workoutsCollection).
		Where("userId", "==", userID).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, err
	}

	out := make([]domain.Workout, 0, len(docs))
	for _, doc := range docs {
		var w domain.Workout
		if err := doc.DataTo(&w); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

// PutWorkout replaces the workout document id. updatedAt is filled in by
// the server and the commit time is returned.
func (s *Store) PutWorkout(ctx context.Context, id string, w domain.Workout) (time.Time, error) {
	w.UpdatedAt = time.Time{}
	res, err := s.client.Collection(workoutsCollection).Doc(id).Set(ctx, w)
	if err != nil {
		return time.Time{}, err
	}
	return res.UpdateTime, nil
}

// DeleteWorkout removes the workout document id.
func (s *Store) DeleteWorkout(ctx context.Context, id string) error {
	_, err := s.client.Collection(workoutsCollection).Doc(id).Delete(ctx)
	return err
}

// GetProgram returns the program document for userID, or nil if absent.
func (s *Store) GetProgram(ctx context.Context, userID string) (*domain.Program, error) {
	snap, err := s.client.Collection(programsCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}
	var p domain.Program
	if err := snap.DataTo(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// PutProgram replaces the program document for userID.
func (s *Store) PutProgram(ctx context.Context, userID string, p domain.Program) error {
	_, err := s.client.Collection(programsCollection).Doc(userID).Set(ctx, p)
	return err
}

type sessionDoc struct {
	UserID    string    `firestore:"userId"`
	Email     string    `firestore:"email"`
	UserAgent string    `firestore:"userAgent"`
	ExpiresAt time.Time `firestore:"expiresAt"`
	CreatedAt time.Time `firestore:"createdAt"`
}

// CreateSession stores a session under its token.
func (s *Store) CreateSession(ctx context.Context, sess domain.Session) error {
	_, err := s.client.Collection(sessionsCollection).Doc(sess.Token).Create(ctx, sessionDoc{
		UserID:    sess.UserID,
		Email:     sess.Email,
		UserAgent: sess.UserAgent,
		ExpiresAt: sess.ExpiresAt,
		CreatedAt: sess.CreatedAt,
	})
	return err
}

// GetSession retrieves a session by token, or nil if absent.
func (s *Store) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	snap, err := s.client.Collection(sessionsCollection).Doc(token).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}
	var d sessionDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, err
	}
	return &domain.Session{
		Token:     token,
		UserID:    d.UserID,
		Email:     d.Email,
		UserAgent: d.UserAgent,
		ExpiresAt: d.ExpiresAt,
		CreatedAt: d.CreatedAt,
	}, nil
}

// DeleteSession deletes a session by token.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	_, err := s.client.Collection(sessionsCollection).Doc(token).Delete(ctx)
	return err
}

// DeleteExpiredSessions deletes every session past its expiry.
func (s *Store) DeleteExpiredSessions(ctx context.Context) error {
	docs, err := s.client.Collection(sessionsCollection).
		Where("expiresAt", "<", time.Now()).
		Documents(ctx).
		GetAll()
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if _, err := doc.Ref.Delete(ctx); err != nil {
			return err
		}
	}
	return nil
}
