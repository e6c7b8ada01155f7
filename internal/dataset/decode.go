// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/j-mckerracher/comp-sys-rankings/pkg/types"
)

// ErrNullInstitution reports an institution whose record is JSON null.
var ErrNullInstitution = errors.New("null institution record")

// Decode reads a dataset document. Each institution is decoded on its own;
// an institution that fails validation is left out of the dataset and
// reported in the returned slice, ordered by name. The error is non-nil
// only when the document itself is not a JSON object.
func Decode(r io.Reader) (types.Dataset, []*types.InstitutionError, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, nil, fmt.Errorf("decoding dataset: %w", err)
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	ds := make(types.Dataset, len(raw))
	var rejected []*types.InstitutionError
	for _, name := range names {
		var rec *types.InstitutionRecord
		if err := json.Unmarshal(raw[name], &rec); err != nil {
			rejected = append(rejected, &types.InstitutionError{Institution: name, Err: err})
			continue
		}
		if rec == nil {
			rejected = append(rejected, &types.InstitutionError{Institution: name, Err: ErrNullInstitution})
			continue
		}
		ds[name] = rec
	}
	return ds, rejected, nil
}
