package store

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore - боевая реализация DocumentStore поверх Cloud Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore подключается к проекту Firestore.
// credentialsFile может быть пустым - тогда используются Application Default Credentials.
func NewFirestoreStore(ctx context.Context, projectID, credentialsFile string) (*FirestoreStore, error) {
	if projectID == "" {
		return nil, fmt.Errorf("идентификатор проекта Firestore не задан")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к Firestore: %w", err)
	}
	log.Printf("NewFirestoreStore: подключено к проекту %s.", projectID)
	return &FirestoreStore{client: client}, nil
}

func (fs *FirestoreStore) Get(ctx context.Context, collection, id string) (map[string]interface{}, bool, error) {
	snap, err := fs.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("чтение %s/%s: %w", collection, id, err)
	}
	return snap.Data(), true, nil
}

func (fs *FirestoreStore) Set(ctx context.Context, collection, id string, fields map[string]interface{}, merge bool) error {
	doc := fs.client.Collection(collection).Doc(id)
	var err error
	if merge {
		_, err = doc.Set(ctx, fields, firestore.MergeAll)
	} else {
		_, err = doc.Set(ctx, fields)
	}
	if err != nil {
		return fmt.Errorf("запись %s/%s: %w", collection, id, err)
	}
	return nil
}

// Subscribe слушает снимки документа через Snapshots-итератор Firestore.
func (fs *FirestoreStore) Subscribe(ctx context.Context, collection, id string, onChange func(map[string]interface{})) (func(), error) {
	subCtx, cancel := context.WithCancel(ctx)
	iter := fs.client.Collection(collection).Doc(id).Snapshots(subCtx)

	go func() {
		defer iter.Stop()
		for {
			snap, err := iter.Next()
			if err != nil {
				if subCtx.Err() == nil {
					log.Printf("FirestoreStore.Subscribe: поток снимков %s/%s прерван: %v", collection, id, err)
				}
				return
			}
			if !snap.Exists() {
				continue
			}
			onChange(snap.Data())
		}
	}()

	return cancel, nil
}

func (fs *FirestoreStore) Close() error {
	return fs.client.Close()
}
