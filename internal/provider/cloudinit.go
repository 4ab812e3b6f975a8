package provider

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
)

// shellQuote single-quotes s for safe use as one shell word, escaping any
// embedded single quotes by closing the quote, emitting an escaped quote,
// and reopening it — the standard POSIX idiom.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// cloudInitUserData renders the cloud-init script that bootstraps the
// agent on a freshly created VM.
//
// Env values and file paths are shell-quoted, and file contents are
// base64-encoded rather than embedded in a heredoc: a heredoc's delimiter
// can appear verbatim inside attacker- or user-controlled file content,
// letting it terminate early and inject arbitrary runcmd lines. Encoding
// sidesteps the whole class of delimiter-collision and quoting bugs.
func cloudInitUserData(spec VpsSpec) string {
	var b strings.Builder
	b.WriteString("#cloud-config\nruncmd:\n")
	b.WriteString("  - mkdir -p /etc/cludbox\n")

	for _, k := range sortedKeys(spec.Env) {
		line := fmt.Sprintf("%s=%s", k, spec.Env[k])
		fmt.Fprintf(&b, "  - echo %s >> /etc/cludbox/env\n", shellQuote(line))
	}

	for _, f := range spec.Files {
		encoded := base64.StdEncoding.EncodeToString([]byte(f.RawValue))
		path := shellQuote(f.GuestPath)
		fmt.Fprintf(&b, "  - mkdir -p $(dirname %s)\n", path)
		fmt.Fprintf(&b, "  - echo %s | base64 -d > %s\n", shellQuote(encoded), path)
	}

	b.WriteString("  - systemctl start cludbox-agent\n")
	return b.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
