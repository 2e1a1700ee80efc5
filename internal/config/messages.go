package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Messages holds every user-facing text the bot sends. Fields containing a
// %d or %s verb are format strings.
type Messages struct {
	Greeting             string `yaml:"greeting"`
	Help                 string `yaml:"help"`
	AskStyleSource       string `yaml:"ask_style_source"`
	CollectingExamples   string `yaml:"collecting_examples"`
	AskContentSource     string `yaml:"ask_content_source"` // %d examples, %s source
	Busy                 string `yaml:"busy"`
	Cancelled            string `yaml:"cancelled"`
	InvalidFormat        string `yaml:"invalid_format"`
	SourceUnavailable    string `yaml:"source_unavailable"`
	InsufficientExamples string `yaml:"insufficient_examples"` // %d found, %d required
	ParseFailed          string `yaml:"parse_failed"`
	TooShort             string `yaml:"too_short"` // %d minimum
	TooLong              string `yaml:"too_long"`  // %d maximum
	ExtractedEcho        string `yaml:"extracted_echo"`
	Generating           string `yaml:"generating"`
	RewriteFailed        string `yaml:"rewrite_failed"`
	PostReady            string `yaml:"post_ready"`
	Stats                string `yaml:"stats"` // %d total, %d ok, %d failed
}

// LoadMessages reads message overrides from a YAML file over the built-in
// English texts. A missing file yields the defaults.
func LoadMessages(path string) (Messages, error) {
	msgs := DefaultMessages()
	if path == "" {
		return msgs, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return msgs, nil
		}
		return msgs, fmt.Errorf("read messages file: %w", err)
	}
	if err := yaml.Unmarshal(data, &msgs); err != nil {
		return msgs, fmt.Errorf("parse messages file: %w", err)
	}
	return msgs, nil
}

// DefaultMessages returns the built-in texts used when no messages file is
// present.
func DefaultMessages() Messages {
	return Messages{
		Greeting: "👋 Hi! I rewrite news in the style of a Telegram channel.\n\n" +
			"Commands:\n" +
			"/restyle - restyle an article link or a text\n" +
			"/cancel - start over\n" +
			"/help - how it works",
		Help: "📖 How to use the bot:\n\n" +
			"1️⃣ Send /restyle\n" +
			"2️⃣ Name a channel to imitate, e.g. @channel or @channel#keyword\n" +
			"3️⃣ Send a link to an article or paste the text\n" +
			"4️⃣ Get your restyled post!",
		AskStyleSource: "📚 Which channel should I imitate?\n\n" +
			"Send @channel, or @channel#keyword to use only posts that mention the keyword.",
		CollectingExamples: "🔎 Reading the channel…",
		AskContentSource: "✍️ Got %d example posts from %s.\n\n" +
			"Now send the original text or a link to rewrite, for example:\n\n" +
			"- Ivan and Maria decided to bake a pie on July 25\n" +
			"or:\n" +
			"- https://example.com/news/article",
		Busy:                 "⏳ Still working on your previous request, please wait.",
		Cancelled:            "OK, starting over. Send /restyle when you are ready.",
		InvalidFormat:        "❌ That does not look like a channel. Use @channel or @channel#keyword. Send /restyle to try again.",
		SourceUnavailable:    "❌ I could not read that channel. Is it public? Try a different source with /restyle.",
		InsufficientExamples: "❌ Found only %d suitable posts, I need at least %d. Try a different channel or keyword with /restyle.",
		ParseFailed:          "❌ Sorry, I could not extract the text from that link. Let's try a different source with /restyle.",
		TooShort:             "❌ The text is too short (minimum %d characters). Let's try a different source with /restyle.",
		TooLong:              "❌ Sorry, the text is too long (maximum %d characters). Let's try a different source with /restyle.",
		ExtractedEcho:        "Please check how the source text was extracted, sometimes it goes wrong:\n\n",
		Generating:           "🪄 Generating the post…",
		RewriteFailed:        "❌ Sorry, the post could not be generated right now. Try again later with /restyle.",
		PostReady:            "✅ Post is ready!\n\nWant to restyle another one? Use /restyle",
		Stats:                "📊 Rewrites so far: %d (%d succeeded, %d failed).",
	}
}
