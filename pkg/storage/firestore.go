package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/gridscope/gridscope/pkg/log"
	"github.com/gridscope/gridscope/pkg/types"
	"github.com/levenlabs/go-lflag"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreDatabase implements Database using Google Cloud Firestore.
// Preferences live in a single "preferences" collection keyed by user id,
// stored as a JSON string plus a schema version for portability.
type FirestoreDatabase struct {
	client    *firestore.Client
	projectID string
	database  string
}

// configuredFirestore sets up the Firestore provider.
// It registers flags for configuration.
func configuredFirestore() *FirestoreDatabase {
	projectID := lflag.String("firestore-project-id", "", "Google Cloud Project ID for Firestore")
	database := lflag.String("firestore-database", "", "Google Cloud Firestore Database")
	emulator := lflag.String("firestore-emulator", "", "Use Firestore emulator")

	f := &FirestoreDatabase{}

	lflag.Do(func() {
		f.projectID = *projectID
		f.database = *database

		// set this because that's how the firestore client expects it
		if *emulator != "" {
			os.Setenv("FIRESTORE_EMULATOR_HOST", *emulator)
		}
	})

	return f
}

// Validate checks if the provider is properly configured.
func (f *FirestoreDatabase) Validate() error {
	// Project ID may be empty if it can be inferred from the environment.
	return nil
}

// Init initializes the Firestore client.
// This must be called before using the provider methods.
func (f *FirestoreDatabase) Init(ctx context.Context) error {
	projectID := f.projectID
	if projectID == "" {
		projectID = firestore.DetectProjectID
	}
	database := f.database
	if database == "" {
		database = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, database)
	if err != nil {
		return fmt.Errorf("failed to create firestore client (project=%s, database=%s): %w", projectID, database, err)
	}
	f.client = client
	return nil
}

// Close closes the Firestore client connection.
func (f *FirestoreDatabase) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func (f *FirestoreDatabase) doc(userID string) (*firestore.DocumentRef, error) {
	if userID == "" {
		return nil, fmt.Errorf("userID cannot be empty")
	}
	return f.client.Collection("preferences").Doc(userID), nil
}

// GetPreferences retrieves a user's preferences document.
func (f *FirestoreDatabase) GetPreferences(ctx context.Context, userID string) (types.Preferences, int, error) {
	ref, err := f.doc(userID)
	if err != nil {
		return types.Preferences{}, 0, err
	}
	doc, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return types.Preferences{}, 0, ErrNotFound
		}
		return types.Preferences{}, 0, fmt.Errorf("failed to fetch preferences doc: %w", err)
	}

	// Read version if available (default 0)
	var version int
	if v, err := doc.DataAt("version"); err == nil {
		if vInt, ok := v.(int64); ok {
			version = int(vInt)
		}
	}

	val, err := doc.DataAt("json")
	if err != nil {
		log.Ctx(ctx).WarnContext(ctx, "preferences doc missing json", slog.String("userID", userID))
		return types.Preferences{}, 0, fmt.Errorf("preferences document missing 'json' field: %w", err)
	}
	jsonStr, ok := val.(string)
	if !ok {
		return types.Preferences{}, 0, errors.New("preferences 'json' field is not a string")
	}

	var p types.Preferences
	if err := json.Unmarshal([]byte(jsonStr), &p); err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to unmarshal preferences json", slog.String("userID", userID), slog.Any("err", err))
		return types.Preferences{}, 0, fmt.Errorf("failed to unmarshal preferences json: %w", err)
	}
	return p, version, nil
}

// SetPreferences saves a user's preferences document.
// It stores the preferences as a JSON string for portability.
func (f *FirestoreDatabase) SetPreferences(ctx context.Context, userID string, prefs types.Preferences, version int) error {
	jsonBytes, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	ref, err := f.doc(userID)
	if err != nil {
		return err
	}
	_, err = ref.Set(ctx, map[string]interface{}{
		"json":    string(jsonBytes),
		"version": version,
	})
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// ListUsers returns the ids of all users with stored preferences.
func (f *FirestoreDatabase) ListUsers(ctx context.Context) ([]string, error) {
	var userIDs []string
	iter := f.client.Collection("preferences").DocumentRefs(ctx)
	for {
		ref, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate preferences collection: %w", err)
		}
		userIDs = append(userIDs, ref.ID)
	}
	return userIDs, nil
}
