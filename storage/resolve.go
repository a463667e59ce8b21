package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/richinex/tinytales/internal/idindex"
)

// Resolve maps ref to a stored story ID. ref may be a full ID or a prefix
// unique among stored IDs.
func Resolve(ctx context.Context, store Store, ref string) (string, error) {
	records, err := store.List(ctx)
	if err != nil {
		return "", err
	}

	idx := idindex.New()
	for _, r := range records {
		idx.Add(r.ID)
	}

	id, err := idx.Resolve(ref)
	switch {
	case errors.Is(err, idindex.ErrNoMatch):
		return "", fmt.Errorf("%w: %s", ErrNotFound, ref)
	case errors.Is(err, idindex.ErrAmbiguous):
		return "", fmt.Errorf("%w: %s matches %d stories", ErrAmbiguous, ref, len(idx.WithPrefix(ref)))
	case err != nil:
		return "", err
	}
	return id, nil
}
