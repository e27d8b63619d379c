package memorycore

import (
	"fmt"
	"regexp"
	"strings"

	"cogmem/internal/types"
)

// encodeChunk renders a memory as the embedding backend's chunking
// contract: `[ID:<uuid>][SEC:<sector>] content [tags:t1,t2,...]`. The
// trailing tag suffix is only appended when tags are present.
func encodeChunk(m *types.Memory) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[ID:%s][SEC:%s] %s", m.ID, m.PrimarySector, m.Content)
	if len(m.Tags) > 0 {
		fmt.Fprintf(&b, " [tags:%s]", strings.Join(m.Tags, ","))
	}
	return b.String()
}

var idPrefixPattern = regexp.MustCompile(`^\[ID:([^\]]+)\]`)

// decodeChunkID recovers the memory id from a backend hit's text.
// Chunks without the prefix are ignored (return ok=false), matching
// the chunking contract's "chunks without this prefix are ignored"
// clause.
func decodeChunkID(text string) (string, bool) {
	m := idPrefixPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}
