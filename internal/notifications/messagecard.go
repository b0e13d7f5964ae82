package notifications

import "fmt"

const (
	cardType    = "MessageCard"
	cardContext = "http://schema.org/extensions"
	themeColor  = "0076D7"

	DefaultImageURL = "https://tipsformsp.atlassian.net/60eb2e4d-8d54-4da3-bcb7-c8829b44e7b9#media-blob-url=true&id=68a18d6c-3c0c-42ad-aa80-a3a3b1fe69f3&contextId=33040&collection=contentId-33040"
)

// MessageCard is the legacy connector card accepted by Teams incoming webhooks.
type MessageCard struct {
	Type       string        `json:"@type"`
	Context    string        `json:"@context"`
	ThemeColor string        `json:"themeColor"`
	Summary    string        `json:"summary"`
	Sections   []CardSection `json:"sections"`
}

type CardSection struct {
	ActivityTitle    string `json:"activityTitle"`
	ActivitySubtitle string `json:"activitySubtitle"`
	ActivityImage    string `json:"activityImage"`
	Facts            []Fact `json:"facts"`
}

// Fact values are either strings or numbers on the wire.
type Fact struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Cards builds every message the daily check sends. The zero value uses
// DefaultImageURL.
type Cards struct {
	ImageURL string
}

func (c Cards) image() string {
	if c.ImageURL == "" {
		return DefaultImageURL
	}
	return c.ImageURL
}

func (c Cards) card(summary, title, subtitle string, facts ...Fact) MessageCard {
	return MessageCard{
		Type:       cardType,
		Context:    cardContext,
		ThemeColor: themeColor,
		Summary:    summary,
		Sections: []CardSection{{
			ActivityTitle:    title,
			ActivitySubtitle: subtitle,
			ActivityImage:    c.image(),
			Facts:            facts,
		}},
	}
}

func (c Cards) InstanceStatus(instanceID, state string) MessageCard {
	return c.card("AWS status check", "AWS EC2 Daily check", "your instance is not running",
		Fact{Name: "instance-id", Value: instanceID},
		Fact{Name: "Status", Value: state},
	)
}

func (c Cards) KeyPair(keyName string, totalKeys int) MessageCard {
	return c.card("AWS status check", "AWS Key Daily check", "there is new key",
		Fact{Name: "New key", Value: keyName},
		Fact{Name: "number of keys", Value: totalKeys},
	)
}

// Completion keeps the subtitle the dashboards already filter on, even though
// it reads oddly for a completion notice.
func (c Cards) Completion() MessageCard {
	return c.card("last", "Daily check", "your instance is not running",
		Fact{Name: "Daily check", Value: "DONE"},
	)
}

func (c Cards) DegradedCompletion(failedTasks []string) MessageCard {
	facts := []Fact{{Name: "Daily check", Value: "DEGRADED"}}
	for _, task := range failedTasks {
		facts = append(facts, Fact{Name: "failed task", Value: task})
	}
	return c.card("last", "Daily check", fmt.Sprintf("%d task(s) failed", len(failedTasks)), facts...)
}

func (c Cards) AdminAudit(totalUsers int, admins []string) MessageCard {
	facts := []Fact{
		{Name: "users", Value: totalUsers},
		{Name: "admins", Value: len(admins)},
	}
	for _, name := range admins {
		facts = append(facts, Fact{Name: "admin", Value: name})
	}
	return c.card("AWS status check", "AWS IAM Daily check", "users with AdministratorAccess", facts...)
}
