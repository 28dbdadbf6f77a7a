// Package fingerprint derives the deterministic identifier of a file selection.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"ppm/internal/domain"
)

// Separator joins the name:size entries before hashing. It is not expected
// to appear in file names.
const Separator = "|"

// Build hashes the sorted name:size entries of files. The result depends only
// on the multiset of (name, size) pairs, never on selection order.
func Build(files []domain.FileDescriptor) (domain.Fingerprint, error) {
	if len(files) == 0 {
		return domain.Fingerprint{}, domain.ErrNoFiles
	}

	entries := make([]string, 0, len(files))
	for _, f := range files {
		entries = append(entries, fmt.Sprintf("%s:%d", f.Name, f.Size))
	}
	sort.Strings(entries)

	sum := sha256.Sum256([]byte(strings.Join(entries, Separator)))
	value := hex.EncodeToString(sum[:])
	return domain.Fingerprint{
		Value:  value,
		Bucket: value[:domain.BucketLength],
	}, nil
}

// FallbackRoute is the route guessed by the client when the server did not
// report one: temp/<bucket>/<fingerprint>.
func FallbackRoute(fp domain.Fingerprint) domain.Route {
	return domain.Route("temp/" + fp.Bucket + "/" + fp.Value)
}
