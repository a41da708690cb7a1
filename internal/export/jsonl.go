package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/paperhub/paperhub/internal/paper"
)

// WriteJSONL writes papers as JSON Lines, one object per line. The output
// uses the papers' JSON form, so it can be fed back to the importer.
func WriteJSONL(w io.Writer, papers []paper.Paper) error {
	enc := json.NewEncoder(w)
	for _, p := range papers {
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("encoding paper %d: %w", p.ID, err)
		}
	}
	return nil
}
