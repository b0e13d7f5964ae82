package notifications

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, card MessageCard) map[string]any {
	t.Helper()
	raw, err := json.Marshal(card)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	return doc
}

func TestInstanceStatusCard_JSON(t *testing.T) {
	doc := decode(t, Cards{}.InstanceStatus("i-123", "stopped"))

	assert.Equal(t, "MessageCard", doc["@type"])
	assert.Equal(t, "http://schema.org/extensions", doc["@context"])
	assert.Equal(t, "0076D7", doc["themeColor"])
	assert.Equal(t, "AWS status check", doc["summary"])

	sections := doc["sections"].([]any)
	require.Len(t, sections, 1)
	section := sections[0].(map[string]any)
	assert.Equal(t, "AWS EC2 Daily check", section["activityTitle"])
	assert.Equal(t, "your instance is not running", section["activitySubtitle"])
	assert.Equal(t, DefaultImageURL, section["activityImage"])

	facts := section["facts"].([]any)
	require.Len(t, facts, 2)
	assert.Equal(t, map[string]any{"name": "instance-id", "value": "i-123"}, facts[0])
	assert.Equal(t, map[string]any{"name": "Status", "value": "stopped"}, facts[1])
}

func TestKeyPairCard_NumericCount(t *testing.T) {
	raw, err := json.Marshal(Cards{}.KeyPair("deploy", 3))
	require.NoError(t, err)

	assert.Contains(t, string(raw), `{"name":"New key","value":"deploy"}`)
	assert.Contains(t, string(raw), `{"name":"number of keys","value":3}`)
	assert.Contains(t, string(raw), `"activityTitle":"AWS Key Daily check"`)
}

func TestCompletionCard(t *testing.T) {
	card := Cards{ImageURL: "https://example.com/logo.png"}.Completion()

	assert.Equal(t, "last", card.Summary)
	require.Len(t, card.Sections, 1)
	assert.Equal(t, "Daily check", card.Sections[0].ActivityTitle)
	assert.Equal(t, "https://example.com/logo.png", card.Sections[0].ActivityImage)
	assert.Equal(t, []Fact{{Name: "Daily check", Value: "DONE"}}, card.Sections[0].Facts)
}

func TestDegradedCompletionCard(t *testing.T) {
	card := Cards{}.DegradedCompletion([]string{"instances", "keypairs"})

	facts := card.Sections[0].Facts
	require.Len(t, facts, 3)
	assert.Equal(t, Fact{Name: "Daily check", Value: "DEGRADED"}, facts[0])
	assert.Equal(t, Fact{Name: "failed task", Value: "instances"}, facts[1])
	assert.Equal(t, Fact{Name: "failed task", Value: "keypairs"}, facts[2])
	assert.Equal(t, "2 task(s) failed", card.Sections[0].ActivitySubtitle)
}

func TestAdminAuditCard(t *testing.T) {
	card := Cards{}.AdminAudit(4, []string{"alice", "bob"})

	assert.Equal(t, []Fact{
		{Name: "users", Value: 4},
		{Name: "admins", Value: 2},
		{Name: "admin", Value: "alice"},
		{Name: "admin", Value: "bob"},
	}, card.Sections[0].Facts)
}
