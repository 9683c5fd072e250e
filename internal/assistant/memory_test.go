package assistant

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Rareminds-eym/skillpassport-sub002/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTurns(n int) []store.Turn {
	turns := make([]store.Turn, 0, n)
	for i := 0; i < n; i++ {
		role := store.RoleUser
		if i%2 == 1 {
			role = store.RoleAssistant
		}
		turns = append(turns, store.Turn{
			ID:      fmt.Sprintf("t%d", i),
			Role:    role,
			Content: fmt.Sprintf("message %d about my career path", i),
		})
	}
	return turns
}

func TestCompress_UnderWindowIsVerbatim(t *testing.T) {
	turns := makeTurns(7)
	mem := Compress(turns)
	assert.Empty(t, mem.Digest)
	assert.Equal(t, turns, mem.Recent)
}

func TestCompress_ExactlyWindowIsVerbatim(t *testing.T) {
	turns := makeTurns(MemoryWindow)
	mem := Compress(turns)
	assert.Empty(t, mem.Digest)
	require.Len(t, mem.Recent, MemoryWindow)
}

func TestCompress_OverWindowSplits(t *testing.T) {
	turns := makeTurns(15)
	mem := Compress(turns)

	require.Len(t, mem.Recent, MemoryWindow)
	assert.Equal(t, "t5", mem.Recent[0].ID)
	assert.Equal(t, "t14", mem.Recent[len(mem.Recent)-1].ID)

	require.NotEmpty(t, mem.Digest)
	assert.Contains(t, mem.Digest, "5 turns summarized")
	// Breadcrumbs carry the per-turn topic from strong pattern matches.
	assert.Contains(t, mem.Digest, "user/career-guidance")
}

func TestCompress_Idempotent(t *testing.T) {
	turns := makeTurns(25)
	first := Compress(turns)
	second := Compress(turns)
	assert.Equal(t, first.Digest, second.Digest)
	assert.Equal(t, first.Recent, second.Recent)
}

func TestCompress_TopiclessTurnsDigestAsGeneral(t *testing.T) {
	turns := make([]store.Turn, 12)
	for i := range turns {
		turns[i] = store.Turn{Role: store.RoleUser, Content: "hello there"}
	}
	mem := Compress(turns)
	require.NotEmpty(t, mem.Digest)
	assert.True(t, strings.Contains(mem.Digest, "user/general"))
}
