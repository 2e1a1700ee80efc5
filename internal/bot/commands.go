package bot

import "strings"

const (
	cmdStart   = "/start"
	cmdHelp    = "/help"
	cmdRestyle = "/restyle"
	cmdRewrite = "/rewrite"
	cmdCancel  = "/cancel"
	cmdReset   = "/reset"
	cmdStats   = "/stats"
)

func splitCommand(text string) (cmd string, rest string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ""
	}
	i := strings.IndexAny(text, " \n\t")
	if i == -1 {
		return text, ""
	}
	return text[:i], strings.TrimSpace(text[i:])
}

// normalizeSlashCommand lowercases cmd and strips a "@BotName" suffix. It
// returns "" when cmd is not a slash command.
func normalizeSlashCommand(cmd string) string {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" || !strings.HasPrefix(cmd, "/") {
		return ""
	}
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd)
}
