package repository

import (
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"expressivart/pkg/errors"
)

func mapFirestoreError(err error, resource, action string) error {
	switch status.Code(err) {
	case codes.NotFound:
		return errors.NotFound(resource, err)
	case codes.AlreadyExists:
		return errors.Conflict(fmt.Sprintf("%s already exists", resource), err)
	default:
		return errors.Internal(fmt.Sprintf("Failed to %s %s", action, resource), err)
	}
}

// collect drains a document iterator into typed values.
func collect[T any](iter *firestore.DocumentIterator, resource string) ([]*T, error) {
	defer iter.Stop()

	var out []*T
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal(fmt.Sprintf("Failed to iterate %s", resource), err)
		}

		var v T
		if err := doc.DataTo(&v); err != nil {
			return nil, errors.Internal(fmt.Sprintf("Failed to parse %s data", resource), err)
		}
		out = append(out, &v)
	}
	return out, nil
}

// createdAtOr keeps a caller-supplied creation time and stamps now otherwise.
func createdAtOr(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
