package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"

	"github.com/davzula/blinkwatch/internal/blink"
)

// Collection holds every blink-monitoring document.
const Collection = "blink_monitoring"

// Cloud writes BlinkRecords to Firestore. The core treats it as
// fire-and-forget: nothing is ever read back.
type Cloud struct {
	client *firestore.Client
}

// OpenCloud builds a Firestore client from a service-account key file.
// When projectID is empty it is read from the key file itself.
func OpenCloud(ctx context.Context, projectID, keyPath string) (*Cloud, error) {
	if _, err := os.Stat(keyPath); err != nil {
		return nil, fmt.Errorf("service account key not found at %s: %w", keyPath, err)
	}

	if projectID == "" {
		var err error
		projectID, err = projectFromKey(keyPath)
		if err != nil {
			return nil, err
		}
	}

	client, err := firestore.NewClient(ctx, projectID, option.WithCredentialsFile(keyPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return &Cloud{client: client}, nil
}

// projectFromKey pulls project_id out of the service-account JSON, the
// way the original deployment used one key file as its only cloud config.
func projectFromKey(keyPath string) (string, error) {
	raw, err := os.ReadFile(keyPath)
	if err != nil {
		return "", err
	}
	var key struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.Unmarshal(raw, &key); err != nil {
		return "", fmt.Errorf("malformed service account key: %w", err)
	}
	if key.ProjectID == "" {
		return "", fmt.Errorf("service account key %s has no project_id", keyPath)
	}
	return key.ProjectID, nil
}

// Save adds one record to the collection and returns the new document ID.
func (c *Cloud) Save(ctx context.Context, rec *blink.Record) (string, error) {
	ref, _, err := c.client.Collection(Collection).Add(ctx, rec)
	if err != nil {
		return "", err
	}
	return ref.ID, nil
}

// Close releases the client.
func (c *Cloud) Close() error {
	return c.client.Close()
}
